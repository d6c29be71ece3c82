package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/app/requests"
	"github.com/petition-qc/app/responses"
	"github.com/petition-qc/app/services"
)

// CollectorDirectory backs the session setup pick list.
type CollectorDirectory interface {
	List(ctx context.Context) ([]models.Collector, error)
	Insert(ctx context.Context, c *models.Collector) error
}

// SessionController owns the session lifecycle endpoints plus the
// collector and book helpers the entry form uses.
type SessionController struct {
	sessionService *services.SessionService
	collectors     CollectorDirectory
	logger         *zap.Logger
}

// NewSessionController wires the session controller.
func NewSessionController(sessionService *services.SessionService, collectors CollectorDirectory, logger *zap.Logger) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		collectors:     collectors,
		logger:         logger,
	}
}

// StartSession opens a data-entry session and returns its batch.
func (sc *SessionController) StartSession(c *gin.Context) {
	var req requests.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	collectorID, err := primitive.ObjectIDFromHex(req.CollectorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "collector_id is not a valid id",
		})
		return
	}

	batch, err := sc.sessionService.StartSession(c.Request.Context(), req.UserID, req.BookNumber, collectorID)
	if err != nil {
		sc.logger.Error("session start failed",
			zap.String("user_id", req.UserID),
			zap.String("book_number", req.BookNumber),
			zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.SessionResponse{Batch: batch})
}

// EndSession closes the caller's active session. Idempotent.
func (sc *SessionController) EndSession(c *gin.Context) {
	var req requests.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	if err := sc.sessionService.EndSession(c.Request.Context(), req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.SessionResponse{Message: "session ended"})
}

// ActiveSession returns the caller's active batch, if any.
func (sc *SessionController) ActiveSession(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "user_id is required",
		})
		return
	}

	batch, err := sc.sessionService.ActiveBatch(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.SessionResponse{Batch: batch})
}

// CheckBook reports whether a book label is already known, for the inline
// lookup on the session form.
func (sc *SessionController) CheckBook(c *gin.Context) {
	bookNumber := c.Query("book_number")
	book, err := sc.sessionService.CheckBook(c.Request.Context(), bookNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.BookCheckResponse{Exists: book != nil, Book: book})
}

// ListCollectors returns the collector pick list.
func (sc *SessionController) ListCollectors(c *gin.Context) {
	collectors, err := sc.collectors.List(c.Request.Context())
	if err != nil {
		sc.logger.Error("listing collectors failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.CollectorListResponse{
		Collectors: collectors,
		Count:      len(collectors),
	})
}

// CreateCollector registers a collector.
func (sc *SessionController) CreateCollector(c *gin.Context) {
	var req requests.CreateCollectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	collector := &models.Collector{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if req.OrganizationID != "" {
		orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.ErrorResponse{
				Error:   "INVALID_REQUEST",
				Message: "organization_id is not a valid id",
			})
			return
		}
		collector.OrganizationID = &orgID
	}

	if err := sc.collectors.Insert(c.Request.Context(), collector); err != nil {
		sc.logger.Error("creating collector failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collector)
}
