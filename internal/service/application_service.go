package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"recruitment_portal/internal/logger"
	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/model"
	"recruitment_portal/internal/repository"
	"recruitment_portal/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrForbidden           = errors.New("forbidden: user does not have permission for this action")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrInvalidFileFormat   = errors.New("invalid file format")
	ErrFileSizeExceeded    = errors.New("file size exceeds limit")
	ErrMissingDocument     = errors.New("resume and photo are required")
	ErrInvalidDocumentKind = errors.New("document must be resume or photo")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidDateOfBirth  = errors.New("dateOfBirth must be formatted as YYYY-MM-DD")
	ErrInvalidJobFilter    = errors.New("jobId filter is not a valid id")
)

// MaxFileSize is the default per-document upload limit
const MaxFileSize = 5 * 1024 * 1024 // 5MB

const topDepartmentsLimit = 5

var allowedExtensions = map[string][]string{
	model.DocumentResume: {".pdf", ".doc", ".docx"},
	model.DocumentPhoto:  {".jpg", ".jpeg", ".png"},
}

// DocumentUploads carries the two files of a submission
type DocumentUploads struct {
	Resume *multipart.FileHeader
	Photo  *multipart.FileHeader
}

// Document is an opened stored document ready to stream
type Document struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// ApplicationService defines operations for job applications
type ApplicationService interface {
	Submit(ctx context.Context, userID string, req model.SubmitApplicationRequest, docs DocumentUploads) (*model.Application, error)
	ListMine(ctx context.Context, userID string) ([]model.Application, error)
	ListAll(ctx context.Context, filters model.ApplicationFilters) ([]model.Application, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Application, error)
	Stats(ctx context.Context) (*model.ApplicationStats, error)
	ExportCSV(ctx context.Context, filters model.ApplicationFilters) (*bytes.Buffer, error)
	OpenDocument(ctx context.Context, id, kind, userID, userRole string) (*Document, error)
}

type applicationService struct {
	repo        repository.ApplicationRepository
	jobRepo     repository.JobRepository
	store       storage.FileStorage
	maxFileSize int64
	rec         metrics.Recorder
}

// NewApplicationService creates a new ApplicationService. A non-positive
// maxFileSize falls back to MaxFileSize.
func NewApplicationService(repo repository.ApplicationRepository, jobRepo repository.JobRepository,
	store storage.FileStorage, maxFileSize int64, rec metrics.Recorder) ApplicationService {
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &applicationService{
		repo:        repo,
		jobRepo:     jobRepo,
		store:       store,
		maxFileSize: maxFileSize,
		rec:         rec,
	}
}

func (s *applicationService) validateDocument(kind string, fh *multipart.FileHeader) error {
	if fh == nil {
		return ErrMissingDocument
	}
	if fh.Size > s.maxFileSize {
		return fmt.Errorf("%w: %s is larger than %d bytes", ErrFileSizeExceeded, kind, s.maxFileSize)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	for _, allowed := range allowedExtensions[kind] {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s", ErrInvalidFileFormat, kind, strings.Join(allowedExtensions[kind], ", "))
}

func (s *applicationService) Submit(ctx context.Context, userID string, req model.SubmitApplicationRequest, docs DocumentUploads) (*model.Application, error) {
	if err := s.validateDocument(model.DocumentResume, docs.Resume); err != nil {
		return nil, err
	}
	if err := s.validateDocument(model.DocumentPhoto, docs.Photo); err != nil {
		return nil, err
	}

	var jobID *string
	if id := strings.TrimSpace(req.JobID); id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, ErrJobNotFound
		}
		job, err := s.jobRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to find job for application: %w", err)
		}
		if job == nil {
			return nil, ErrJobNotFound
		}
		jobID = &job.ID
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateOfBirth
		}
		dob = &parsed
	}

	resumeKey, err := s.store.Save(ctx, model.DocumentResume, docs.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}
	photoKey, err := s.store.Save(ctx, model.DocumentPhoto, docs.Photo)
	if err != nil {
		s.removeStored(ctx, resumeKey)
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	app := &model.Application{
		ID:                   uuid.New().String(),
		UserID:               userID,
		JobID:                jobID,
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                strings.TrimSpace(req.Email),
		Phone:                strings.TrimSpace(req.Phone),
		DateOfBirth:          dob,
		Gender:               req.Gender,
		Category:             req.Category,
		Address:              req.Address,
		City:                 req.City,
		State:                req.State,
		Pincode:              req.Pincode,
		HighestQualification: req.HighestQualification,
		University:           req.University,
		GraduationYear:       req.GraduationYear,
		Percentage:           req.Percentage,
		Experience:           req.Experience,
		CurrentPosition:      req.CurrentPosition,
		CurrentCompany:       req.CurrentCompany,
		Skills:               req.Skills,
		Position:             strings.TrimSpace(req.Position),
		Department:           strings.TrimSpace(req.Department),
		Resume:               resumeKey,
		Photo:                photoKey,
		Achievements:         req.Achievements,
		References:           req.References,
		Status:               model.StatusUnderReview,
		AppliedDate:          time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.removeStored(ctx, resumeKey, photoKey)
		return nil, fmt.Errorf("failed to create application in repo: %w", err)
	}

	s.rec.RecordApplicationSubmitted()
	return app, nil
}

func (s *applicationService) removeStored(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to remove orphaned upload")
		}
	}
}

func (s *applicationService) ListMine(ctx context.Context, userID string) ([]model.Application, error) {
	apps, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user applications from repo: %w", err)
	}
	return apps, nil
}

func (s *applicationService) ListAll(ctx context.Context, filters model.ApplicationFilters) ([]model.Application, error) {
	if filters.Status != nil && *filters.Status != "" && !model.IsValidStatus(*filters.Status) {
		return nil, ErrInvalidStatus
	}
	if filters.JobID != nil && *filters.JobID != "" {
		if _, err := uuid.Parse(*filters.JobID); err != nil {
			return nil, ErrInvalidJobFilter
		}
	}
	apps, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get all applications for admin: %w", err)
	}
	return apps, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, id, status string) (*model.Application, error) {
	if !model.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrApplicationNotFound
	}
	app, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

// Stats reports every status, including those with no applications
func (s *applicationService) Stats(ctx context.Context) (*model.ApplicationStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	departments, err := s.repo.TopDepartments(ctx, topDepartmentsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank departments: %w", err)
	}

	stats := &model.ApplicationStats{TopDepartments: departments}
	for _, c := range counts {
		stats.Total += c
	}
	stats.StatusDistribution = make([]model.StatusCount, 0, len(model.ApplicationStatuses))
	for _, status := range model.ApplicationStatuses {
		sc := model.StatusCount{Status: status, Count: counts[status]}
		if stats.Total > 0 {
			sc.Percentage = math.Round(float64(sc.Count)*10000/float64(stats.Total)) / 100
		}
		stats.StatusDistribution = append(stats.StatusDistribution, sc)
	}
	return stats, nil
}

func (s *applicationService) ExportCSV(ctx context.Context, filters model.ApplicationFilters) (*bytes.Buffer, error) {
	apps, err := s.ListAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	header := []string{"ID", "Applicant Name", "Email", "Phone", "Position", "Department", "Status", "Applied Date", "Job ID"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range apps {
		var jobID string
		if a.JobID != nil {
			jobID = *a.JobID
		}
		row := []string{
			a.ID,
			strings.TrimSpace(a.FirstName + " " + a.LastName),
			a.Email,
			a.Phone,
			a.Position,
			a.Department,
			a.Status,
			a.AppliedDate.Format(time.RFC3339),
			jobID,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return buffer, nil
}

// OpenDocument streams a stored resume or photo to its owner or an admin
func (s *applicationService) OpenDocument(ctx context.Context, id, kind, userID, userRole string) (*Document, error) {
	if _, ok := allowedExtensions[kind]; !ok {
		return nil, ErrInvalidDocumentKind
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrApplicationNotFound
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find application for document retrieval: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if userRole != model.RoleAdmin && app.UserID != userID {
		return nil, ErrForbidden
	}

	key := app.Resume
	if kind == model.DocumentPhoto {
		key = app.Photo
	}
	if key == "" {
		return nil, ErrDocumentNotFound
	}

	body, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", kind, err)
	}

	ext := path.Ext(key)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Document{Body: body, Filename: kind + ext, ContentType: contentType}, nil
}
