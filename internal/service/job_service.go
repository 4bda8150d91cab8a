package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrInvalidJob  = errors.New("invalid job")
)

// JobService defines operations on job postings
type JobService interface {
	CreateJob(ctx context.Context, adminID string, req model.CreateJobRequest) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, filters model.JobFilters) ([]model.Job, error)
	UpdateJob(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

type jobService struct {
	repo      repository.JobRepository
	sanitizer *bluemonday.Policy
}

// NewJobService creates a new JobService
func NewJobService(repo repository.JobRepository) JobService {
	return &jobService{repo: repo, sanitizer: bluemonday.UGCPolicy()}
}

// parseDeadline accepts a full RFC3339 timestamp or a bare YYYY-MM-DD date
func parseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: deadline must be RFC3339 or YYYY-MM-DD, got %q", ErrInvalidJob, value)
	}
	return t, nil
}

func (s *jobService) CreateJob(ctx context.Context, adminID string, req model.CreateJobRequest) (*model.Job, error) {
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}
	jobType := strings.TrimSpace(req.Type)
	if jobType == "" {
		jobType = model.DefaultJobType
	}

	job := &model.Job{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Department:  strings.TrimSpace(req.Department),
		Location:    strings.TrimSpace(req.Location),
		Experience:  strings.TrimSpace(req.Experience),
		Salary:      req.Salary,
		Deadline:    deadline,
		Type:        jobType,
		Description: s.sanitizer.Sanitize(req.Description),
		Skills:      cleanSkills(req.Skills),
		PostedDate:  time.Now().UTC(),
	}
	if adminID != "" {
		job.PostedBy = &adminID
	}
	if strings.TrimSpace(job.Description) == "" {
		return nil, fmt.Errorf("%w: description is empty after sanitizing", ErrInvalidJob)
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job in repo: %w", err)
	}
	return job, nil
}

func (s *jobService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrJobNotFound
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find job by ID: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context, filters model.JobFilters) ([]model.Job, error) {
	jobs, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs from repo: %w", err)
	}
	return jobs, nil
}

func (s *jobService) UpdateJob(ctx context.Context, id string, req model.UpdateJobRequest) (*model.Job, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Department != nil {
		job.Department = strings.TrimSpace(*req.Department)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.Experience != nil {
		job.Experience = strings.TrimSpace(*req.Experience)
	}
	if req.Salary != nil {
		job.Salary = req.Salary
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		job.Deadline = deadline
	}
	if req.Type != nil && strings.TrimSpace(*req.Type) != "" {
		job.Type = strings.TrimSpace(*req.Type)
	}
	if req.Description != nil {
		job.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.Skills != nil {
		job.Skills = cleanSkills(req.Skills)
	}

	if job.Title == "" || job.Department == "" || job.Location == "" || strings.TrimSpace(job.Description) == "" {
		return nil, fmt.Errorf("%w: title, department, location and description cannot be empty", ErrInvalidJob)
	}

	if err := s.repo.Update(ctx, job); err != nil {
		// deleted since it was loaded above
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job in repo: %w", err)
	}
	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrJobNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete job in repo: %w", err)
	}
	if !deleted {
		return ErrJobNotFound
	}
	return nil
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
