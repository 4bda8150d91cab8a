package model

import "time"

const (
	StatusUnderReview        = "Under Review"
	StatusShortlisted        = "Shortlisted"
	StatusInterviewScheduled = "Interview Scheduled"
	StatusSelected           = "Selected"
	StatusRejected           = "Rejected"
)

// ApplicationStatuses lists every status in workflow order.
var ApplicationStatuses = []string{
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusSelected,
	StatusRejected,
}

// IsValidStatus reports whether s is one of ApplicationStatuses
func IsValidStatus(s string) bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const (
	DocumentResume = "resume"
	DocumentPhoto  = "photo"
)

// Application is a user's submission against a job posting
type Application struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	JobID  *string `json:"job_id,omitempty"`

	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Category    string     `json:"category,omitempty"`

	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`

	HighestQualification string `json:"highest_qualification,omitempty"`
	University           string `json:"university,omitempty"`
	GraduationYear       string `json:"graduation_year,omitempty"`
	Percentage           string `json:"percentage,omitempty"`

	Experience      string `json:"experience,omitempty"`
	CurrentPosition string `json:"current_position,omitempty"`
	CurrentCompany  string `json:"current_company,omitempty"`
	Skills          string `json:"skills,omitempty"`

	Position   string `json:"position"`
	Department string `json:"department"`

	Resume string `json:"resume"` // storage key
	Photo  string `json:"photo"`  // storage key

	Achievements string `json:"achievements,omitempty"`
	References   string `json:"references,omitempty"`

	Status      string    `json:"status"`
	AppliedDate time.Time `json:"applied_date"`

	// Populated on reads that join the target job
	JobTitle      *string `json:"job_title,omitempty"`
	JobDepartment *string `json:"job_department,omitempty"`
}

// SubmitApplicationRequest is bound from the multipart form of a submission
type SubmitApplicationRequest struct {
	JobID       string `form:"jobId"`
	FirstName   string `form:"firstName" binding:"required"`
	LastName    string `form:"lastName" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
	Phone       string `form:"phone" binding:"required"`
	DateOfBirth string `form:"dateOfBirth"` // YYYY-MM-DD
	Gender      string `form:"gender"`
	Category    string `form:"category"`

	Address string `form:"address"`
	City    string `form:"city"`
	State   string `form:"state"`
	Pincode string `form:"pincode"`

	HighestQualification string `form:"highestQualification"`
	University           string `form:"university"`
	GraduationYear       string `form:"graduationYear"`
	Percentage           string `form:"percentage"`

	Experience      string `form:"experience"`
	CurrentPosition string `form:"currentPosition"`
	CurrentCompany  string `form:"currentCompany"`
	Skills          string `form:"skills"`

	Position   string `form:"position" binding:"required"`
	Department string `form:"department" binding:"required"`

	Achievements string `form:"achievements"`
	References   string `form:"references"`
}

// UpdateStatusRequest is the admin body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ApplicationFilters narrows the admin listing
type ApplicationFilters struct {
	Status *string
	JobID  *string
}

// StatusCount is one entry of the status distribution
type StatusCount struct {
	Status     string  `json:"status"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DepartmentCount is one entry of the department ranking
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// ApplicationStats is the admin analytics summary
type ApplicationStats struct {
	Total              int64             `json:"total"`
	StatusDistribution []StatusCount     `json:"status_distribution"`
	TopDepartments     []DepartmentCount `json:"top_departments"`
}
