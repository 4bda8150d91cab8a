package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recruitment_portal/internal/model"

	"github.com/jackc/pgx/v5"
)

// ApplicationRepository defines operations for job applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id string) (*model.Application, error)
	FindByUser(ctx context.Context, userID string) ([]model.Application, error)
	FindAll(ctx context.Context, filters model.ApplicationFilters) ([]model.Application, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Application, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	TopDepartments(ctx context.Context, limit int) ([]model.DepartmentCount, error)
}

type applicationRepository struct {
	db DBTX
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DBTX) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `a.id, a.user_id, a.job_id, a.first_name, a.last_name, a.email, a.phone,
    a.date_of_birth, a.gender, a.category, a.address, a.city, a.state, a.pincode,
    a.highest_qualification, a.university, a.graduation_year, a.percentage,
    a.experience, a.current_position, a.current_company, a.skills,
    a.position, a.department, a.resume, a.photo, a.achievements, a."references",
    a.status, a.applied_date, j.title, j.department`

const applicationFrom = ` FROM applications a LEFT JOIN jobs j ON j.id = a.job_id`

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.JobID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.DateOfBirth, &a.Gender, &a.Category, &a.Address, &a.City, &a.State, &a.Pincode,
		&a.HighestQualification, &a.University, &a.GraduationYear, &a.Percentage,
		&a.Experience, &a.CurrentPosition, &a.CurrentCompany, &a.Skills,
		&a.Position, &a.Department, &a.Resume, &a.Photo, &a.Achievements, &a.References,
		&a.Status, &a.AppliedDate, &a.JobTitle, &a.JobDepartment,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new application
func (r *applicationRepository) Create(ctx context.Context, a *model.Application) error {
	sql := `INSERT INTO applications (
            id, user_id, job_id, first_name, last_name, email, phone,
            date_of_birth, gender, category, address, city, state, pincode,
            highest_qualification, university, graduation_year, percentage,
            experience, current_position, current_company, skills,
            position, department, resume, photo, achievements, "references",
            status, applied_date)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
                    $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`
	_, err := r.db.Exec(ctx, sql,
		a.ID, a.UserID, a.JobID, a.FirstName, a.LastName, a.Email, a.Phone,
		a.DateOfBirth, a.Gender, a.Category, a.Address, a.City, a.State, a.Pincode,
		a.HighestQualification, a.University, a.GraduationYear, a.Percentage,
		a.Experience, a.CurrentPosition, a.CurrentCompany, a.Skills,
		a.Position, a.Department, a.Resume, a.Photo, a.Achievements, a.References,
		a.Status, a.AppliedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// FindByID retrieves an application by its ID; (nil, nil) when absent
func (r *applicationRepository) FindByID(ctx context.Context, id string) (*model.Application, error) {
	sql := `SELECT ` + applicationColumns + applicationFrom + ` WHERE a.id = $1`
	a, err := scanApplication(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find application by ID: %w", err)
	}
	return a, nil
}

// FindByUser lists the applications submitted by one user, newest first
func (r *applicationRepository) FindByUser(ctx context.Context, userID string) ([]model.Application, error) {
	sql := `SELECT ` + applicationColumns + applicationFrom + ` WHERE a.user_id = $1 ORDER BY a.applied_date DESC`
	return r.queryApplications(ctx, sql, userID)
}

// FindAll lists every application for the admin panel, newest first
func (r *applicationRepository) FindAll(ctx context.Context, filters model.ApplicationFilters) ([]model.Application, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + applicationColumns + applicationFrom)

	args := []interface{}{}
	argCount := 1
	var conditions []string

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.JobID != nil && *filters.JobID != "" {
		conditions = append(conditions, fmt.Sprintf("a.job_id = $%d", argCount))
		args = append(args, *filters.JobID)
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.applied_date DESC")

	return r.queryApplications(ctx, queryBuilder.String(), args...)
}

func (r *applicationRepository) queryApplications(ctx context.Context, sql string, args ...interface{}) ([]model.Application, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	applications := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		applications = append(applications, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return applications, nil
}

// UpdateStatus sets the status of one application and returns the updated record; (nil, nil) when absent
func (r *applicationRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Application, error) {
	cmdTag, err := r.db.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// CountByStatus returns the number of applications per status
func (r *applicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

// TopDepartments ranks departments by number of applications
func (r *applicationRepository) TopDepartments(ctx context.Context, limit int) ([]model.DepartmentCount, error) {
	sql := `SELECT department, COUNT(*) AS total FROM applications
            GROUP BY department ORDER BY total DESC, department ASC LIMIT $1`
	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank departments: %w", err)
	}
	defer rows.Close()

	departments := []model.DepartmentCount{}
	for rows.Next() {
		var d model.DepartmentCount
		if err := rows.Scan(&d.Department, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan department count: %w", err)
		}
		departments = append(departments, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department counts: %w", err)
	}
	return departments, nil
}
