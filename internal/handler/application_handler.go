package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"recruitment_portal/internal/model"
	"recruitment_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// ApplicationHandler handles application submission and review requests
type ApplicationHandler struct {
	service service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(s service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: s}
}

func formFile(c *gin.Context, name string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return fh, err
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, _, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.SubmitApplicationRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	resume, err := formFile(c, model.DocumentResume)
	if err != nil {
		badRequest(c, err)
		return
	}
	photo, err := formFile(c, model.DocumentPhoto)
	if err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.service.Submit(c.Request.Context(), userID, req, service.DocumentUploads{Resume: resume, Photo: photo})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingDocument),
			errors.Is(err, service.ErrInvalidFileFormat),
			errors.Is(err, service.ErrFileSizeExceeded),
			errors.Is(err, service.ErrInvalidDateOfBirth):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			internalError(c, "Failed to submit application", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": app,
	})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, _, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	apps, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "Failed to retrieve applications", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func adminFilters(c *gin.Context) model.ApplicationFilters {
	return model.ApplicationFilters{
		Status: optionalQuery(c, "status"),
		JobID:  optionalQuery(c, "jobId"),
	}
}

func (h *ApplicationHandler) ListAll(c *gin.Context) {
	apps, err := h.service.ListAll(c.Request.Context(), adminFilters(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) || errors.Is(err, service.ErrInvalidJobFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to retrieve applications", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			internalError(c, "Failed to update application status", err)
		}
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to retrieve statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ApplicationHandler) ExportCSV(c *gin.Context) {
	csvBuffer, err := h.service.ExportCSV(c.Request.Context(), adminFilters(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) || errors.Is(err, service.ErrInvalidJobFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to export applications", err)
		return
	}

	fileName := fmt.Sprintf("applications_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

func (h *ApplicationHandler) Document(c *gin.Context) {
	userID, role, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.OpenDocument(c.Request.Context(), c.Param("id"), c.Param("kind"), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDocumentKind):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrApplicationNotFound), errors.Is(err, service.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			internalError(c, "Failed to retrieve document", err)
		}
		return
	}
	defer doc.Body.Close()

	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", doc.Filename),
	})
}

// RegisterApplicationRoutes registers applicant and admin application routes.
// submitMW runs in front of the submission handler only.
func (h *ApplicationHandler) RegisterApplicationRoutes(rg *gin.RouterGroup, jwtAuthMW, adminRoleMW gin.HandlerFunc, submitMW ...gin.HandlerFunc) {
	apps := rg.Group("/applications", jwtAuthMW)
	{
		apps.POST("", append(submitMW, h.Submit)...)
		apps.GET("/my", h.ListMine)
		apps.GET("/:id/documents/:kind", h.Document)
	}

	adminApps := rg.Group("/applications", jwtAuthMW, adminRoleMW)
	{
		adminApps.GET("", h.ListAll)
		adminApps.GET("/stats", h.Stats)
		adminApps.GET("/export/csv", h.ExportCSV)
		adminApps.PUT("/:id/status", h.UpdateStatus)
	}
}
