package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// SERVICE INTERFACE (for testing)
// ==============================================

type SyncService interface {
	Start(ctx context.Context, kind string) (*models.SyncJob, error)
	Get(ctx context.Context, jobID string) (*models.SyncJob, error)
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type AdminHandler struct {
	sync SyncService
}

func NewAdminHandler(sync SyncService) *AdminHandler {
	return &AdminHandler{sync: sync}
}

// ==============================================
// ENDPOINTS
// ==============================================

// StartSyncJob handles POST /api/v1/admin/sync-jobs
func (h *AdminHandler) StartSyncJob(c *gin.Context) {
	var req dto.StartSyncJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
		return
	}

	job, err := h.sync.Start(c.Request.Context(), req.Kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, jobToDTO(job))
}

// GetSyncJob handles GET /api/v1/admin/sync-jobs/:id
func (h *AdminHandler) GetSyncJob(c *gin.Context) {
	job, err := h.sync.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobToDTO(job))
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/admin")
	{
		v1.POST("/sync-jobs", h.StartSyncJob)
		v1.GET("/sync-jobs/:id", h.GetSyncJob)
	}
}

// ==============================================
// HELPER FUNCTIONS
// ==============================================

func jobToDTO(job *models.SyncJob) dto.SyncJobResponse {
	resp := dto.SyncJobResponse{
		ID:        job.ID,
		Kind:      job.Kind,
		Status:    job.Status,
		Processed: job.Processed,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
	if job.Error.Valid {
		resp.Error = job.Error.String
	}
	return resp
}
