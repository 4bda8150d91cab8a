package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recruitment_portal/internal/model"

	"github.com/jackc/pgx/v5"
)

// JobRepository defines operations for job postings
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, id string) (*model.Job, error)
	FindAll(ctx context.Context, filters model.JobFilters) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id string) (bool, error)
}

type jobRepository struct {
	db DBTX
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db DBTX) JobRepository {
	return &jobRepository{db: db}
}

const jobColumns = `id, title, department, location, experience, salary, deadline, type, description, skills, posted_date, posted_by`

// Create inserts a new job posting
func (r *jobRepository) Create(ctx context.Context, j *model.Job) error {
	sql := `INSERT INTO jobs (` + jobColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, sql, j.ID, j.Title, j.Department, j.Location, j.Experience, j.Salary,
		j.Deadline, j.Type, j.Description, j.Skills, j.PostedDate, j.PostedBy)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// FindByID retrieves a job by its ID; (nil, nil) when absent
func (r *jobRepository) FindByID(ctx context.Context, id string) (*model.Job, error) {
	sql := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	j := &model.Job{}
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&j.ID, &j.Title, &j.Department, &j.Location, &j.Experience, &j.Salary,
		&j.Deadline, &j.Type, &j.Description, &j.Skills, &j.PostedDate, &j.PostedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find job by ID: %w", err)
	}
	return j, nil
}

// FindAll lists jobs newest first, narrowed by the optional filters
func (r *jobRepository) FindAll(ctx context.Context, filters model.JobFilters) ([]model.Job, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + jobColumns + ` FROM jobs`)

	args := []interface{}{}
	argCount := 1
	var conditions []string

	if filters.Department != nil && *filters.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argCount))
		args = append(args, *filters.Department)
		argCount++
	}
	if filters.Location != nil && *filters.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", argCount))
		args = append(args, *filters.Location)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY posted_date DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Department, &j.Location, &j.Experience, &j.Salary,
			&j.Deadline, &j.Type, &j.Description, &j.Skills, &j.PostedDate, &j.PostedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

// Update overwrites the mutable fields of a job
func (r *jobRepository) Update(ctx context.Context, j *model.Job) error {
	sql := `UPDATE jobs
            SET title = $1, department = $2, location = $3, experience = $4, salary = $5,
                deadline = $6, type = $7, description = $8, skills = $9
            WHERE id = $10`
	cmdTag, err := r.db.Exec(ctx, sql, j.Title, j.Department, j.Location, j.Experience, j.Salary,
		j.Deadline, j.Type, j.Description, j.Skills, j.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", j.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a job; false when nothing was deleted
func (r *jobRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
