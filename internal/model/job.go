package model

import "time"

const DefaultJobType = "Full-time"

// Job is a recruitment listing published by an administrator
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Department  string    `json:"department"`
	Location    string    `json:"location"`
	Experience  string    `json:"experience"`
	Salary      *string   `json:"salary,omitempty"`
	Deadline    time.Time `json:"deadline"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	PostedDate  time.Time `json:"posted_date"`
	PostedBy    *string   `json:"posted_by,omitempty"`
}

// CreateJobRequest is used for creating a new job posting
type CreateJobRequest struct {
	Title       string    `json:"title" binding:"required"`
	Department  string    `json:"department" binding:"required"`
	Location    string    `json:"location" binding:"required"`
	Experience  string    `json:"experience" binding:"required"`
	Salary      *string   `json:"salary"`
	Deadline    string    `json:"deadline" binding:"required"` // RFC3339 or YYYY-MM-DD
	Type        string    `json:"type"`
	Description string    `json:"description" binding:"required"`
	Skills      []string  `json:"skills"`
}

// UpdateJobRequest carries a partial update; nil fields are left untouched
type UpdateJobRequest struct {
	Title       *string    `json:"title,omitempty"`
	Department  *string    `json:"department,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Experience  *string    `json:"experience,omitempty"`
	Salary      *string    `json:"salary,omitempty"`
	Deadline    *string    `json:"deadline,omitempty"`
	Type        *string    `json:"type,omitempty"`
	Description *string    `json:"description,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
}

// JobFilters narrows the public listing
type JobFilters struct {
	Department *string
	Location   *string
	Search     *string // matched against title and description
}
