package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petition-qc/app/requests"
	"github.com/petition-qc/app/responses"
	"github.com/petition-qc/app/services"
)

// AdminController exposes the maintenance surface: progress stats,
// counter reconciliation, index builds, cache control and import jobs.
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController wires the admin controller.
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{adminService: adminService, logger: logger}
}

// GetStats returns the verification progress aggregation plus cache and
// registry counters.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.ProgressStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("stats aggregation failed", zap.Error(err))
		writeError(c, err)
		return
	}

	cacheStats, err := ac.adminService.CacheStats(c.Request.Context())
	if err != nil {
		ac.logger.Warn("cache stats unavailable", zap.Error(err))
		cacheStats = &services.CacheStats{}
	}

	registryCount, err := ac.adminService.RegistryCount(c.Request.Context())
	if err != nil {
		ac.logger.Warn("registry count unavailable", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"progress":       stats,
		"cache":          cacheStats,
		"registry_count": registryCount,
	})
}

// Reconcile re-derives every batch's counters from its signature rows.
func (ac *AdminController) Reconcile(c *gin.Context) {
	report, err := ac.adminService.ReconcileCounters(c.Request.Context())
	if err != nil {
		ac.logger.Error("counter reconcile failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// BuildIndexes creates the registry search indexes.
func (ac *AdminController) BuildIndexes(c *gin.Context) {
	if err := ac.adminService.BuildIndexes(c.Request.Context()); err != nil {
		ac.logger.Error("index build failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"built": true})
}

// InvalidateCache drops every cached search result.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if err := ac.adminService.InvalidateCache(c.Request.Context()); err != nil {
		ac.logger.Error("cache invalidate failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": true})
}

// StartImport launches an async voter-file import job.
func (ac *AdminController) StartImport(c *gin.Context) {
	var req requests.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	jobID := ac.adminService.StartImport(req.Path, req.Replace)
	c.JSON(http.StatusAccepted, responses.ImportResponse{
		JobID:  jobID,
		Status: services.ImportStatusRunning,
	})
}

// GetImportStatus returns the state of one import job.
func (ac *AdminController) GetImportStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	job, ok := ac.adminService.ImportStatus(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "JOB_NOT_FOUND",
			Message: "unknown import job",
		})
		return
	}
	c.JSON(http.StatusOK, job)
}
