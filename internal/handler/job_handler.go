package handler

import (
	"errors"
	"net/http"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// JobHandler handles job posting requests
type JobHandler struct {
	service service.JobService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(s service.JobService) *JobHandler {
	return &JobHandler{service: s}
}

func optionalQuery(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	filters := model.JobFilters{
		Department: optionalQuery(c, "department"),
		Location:   optionalQuery(c, "location"),
		Search:     optionalQuery(c, "q"),
	}
	jobs, err := h.service.ListJobs(c.Request.Context(), filters)
	if err != nil {
		internalError(c, "Failed to retrieve jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, "Failed to retrieve job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	adminID, _, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), adminID, req)
	if err != nil {
		h.handleError(c, "Failed to create job", err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req model.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.service.UpdateJob(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, "Failed to update job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.service.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, "Failed to delete job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

func (h *JobHandler) handleError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidJob):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		internalError(c, msg, err)
	}
}

// RegisterJobRoutes registers public listing routes and admin-only mutations
func (h *JobHandler) RegisterJobRoutes(rg *gin.RouterGroup, jwtAuthMW, adminRoleMW gin.HandlerFunc) {
	jobs := rg.Group("/jobs")
	{
		jobs.GET("", h.ListJobs)
		jobs.GET("/:id", h.GetJob)
	}

	adminJobs := rg.Group("/jobs", jwtAuthMW, adminRoleMW)
	{
		adminJobs.POST("", h.CreateJob)
		adminJobs.PUT("/:id", h.UpdateJob)
		adminJobs.DELETE("/:id", h.DeleteJob)
	}
}
