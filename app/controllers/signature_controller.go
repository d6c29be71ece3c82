package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/app/requests"
	"github.com/petition-qc/app/responses"
	"github.com/petition-qc/app/services"
)

// SignatureController records classification decisions.
type SignatureController struct {
	signatureService *services.SignatureService
	logger           *zap.Logger
}

// NewSignatureController wires the signature controller.
func NewSignatureController(signatureService *services.SignatureService, logger *zap.Logger) *SignatureController {
	return &SignatureController{signatureService: signatureService, logger: logger}
}

// Record persists one classification against the caller's active batch.
func (sc *SignatureController) Record(c *gin.Context) {
	var req requests.RecordSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	var voterID *primitive.ObjectID
	if req.VoterID != "" {
		id, err := primitive.ObjectIDFromHex(req.VoterID)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.ErrorResponse{
				Error:   "INVALID_REQUEST",
				Message: "voter_id is not a valid id",
			})
			return
		}
		voterID = &id
	}

	result, err := sc.signatureService.RecordSignature(
		c.Request.Context(), req.UserID, models.Classification(req.Classification), voterID, req.RawText)
	if err != nil {
		sc.logger.Error("recording signature failed",
			zap.String("user_id", req.UserID),
			zap.String("classification", req.Classification),
			zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.RecordSignatureResponse{
		SignatureID: result.SignatureID.Hex(),
		BatchID:     result.BatchID.Hex(),
		Cleared:     result.Cleared,
	})
}
