package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
)

// VoterRepo resolves voter references. FindByID returns (nil, nil) for an
// unknown id so the recorder can fail soft on stale references.
type VoterRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voter, error)
}

// SignatureRecorder persists one signature and its batch counter bump
// atomically. Implemented by store.SignatureStore.
type SignatureRecorder interface {
	Record(ctx context.Context, sig *models.Signature) (primitive.ObjectID, error)
}

// RecordResult tells the caller the row landed and the search field may
// be cleared for the next signature.
type RecordResult struct {
	SignatureID primitive.ObjectID `json:"signature_id"`
	BatchID     primitive.ObjectID `json:"batch_id"`
	Cleared     bool               `json:"cleared"`
}

// SignatureService records classification decisions against the caller's
// active batch.
type SignatureService struct {
	batches  BatchRepo
	voters   VoterRepo
	recorder SignatureRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewSignatureService wires the signature service.
func NewSignatureService(batches BatchRepo, voters VoterRepo, recorder SignatureRecorder, logger *zap.Logger) *SignatureService {
	return &SignatureService{
		batches:  batches,
		voters:   voters,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// RecordMatch records a person match against the referenced voter.
func (s *SignatureService) RecordMatch(ctx context.Context, entererID string, voterID *primitive.ObjectID, rawText string) (*RecordResult, error) {
	return s.record(ctx, entererID, models.ClassificationPersonMatch, voterID, rawText)
}

// RecordAddressOnly records an address-only match. The voter reference is
// the caller's optional best guess.
func (s *SignatureService) RecordAddressOnly(ctx context.Context, entererID string, voterID *primitive.ObjectID, rawText string) (*RecordResult, error) {
	return s.record(ctx, entererID, models.ClassificationAddressOnly, voterID, rawText)
}

// RecordNoMatch records that no registry record matched.
func (s *SignatureService) RecordNoMatch(ctx context.Context, entererID string, rawText string) (*RecordResult, error) {
	return s.record(ctx, entererID, models.ClassificationNoMatch, nil, rawText)
}

// RecordSignature dispatches on a wire-level classification value.
func (s *SignatureService) RecordSignature(ctx context.Context, entererID string, classification models.Classification, voterID *primitive.ObjectID, rawText string) (*RecordResult, error) {
	if !classification.Valid() {
		return nil, fmt.Errorf("%w: unknown classification %q", ErrInvalidQuery, classification)
	}
	if classification == models.ClassificationNoMatch {
		voterID = nil
	}
	return s.record(ctx, entererID, classification, voterID, rawText)
}

func (s *SignatureService) record(ctx context.Context, entererID string, classification models.Classification, voterID *primitive.ObjectID, rawText string) (*RecordResult, error) {
	if entererID == "" {
		return nil, fmt.Errorf("%w: enterer is required", ErrInvalidQuery)
	}

	batch, err := s.batches.FindActiveByEnterer(ctx, entererID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if batch == nil {
		return nil, ErrNoActiveSession
	}

	sig := &models.Signature{
		BatchID:        batch.ID,
		BookID:         batch.BookID,
		Classification: classification,
		RawText:        rawText,
		CreatedAt:      s.now().UTC(),
	}

	if voterID != nil {
		voter, err := s.voters.FindByID(ctx, *voterID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if voter == nil {
			// Stale reference: record the classification with a null
			// voter rather than rejecting the operator's decision.
			s.logger.Warn("voter reference not found, recording without it",
				zap.String("voter_id", voterID.Hex()))
		} else {
			sig.VoterID = &voter.ID
			sig.SOSVoterID = voter.SOSVoterID
			sig.CountyID = voter.CountyID
			sig.ResidentialAddress1 = voter.ResidentialAddress1
			sig.ResidentialAddress2 = voter.ResidentialAddress2
			sig.ResidentialCity = voter.ResidentialCity
			sig.ResidentialState = voter.ResidentialState
			sig.ResidentialZip = voter.ResidentialZip
			sig.RegisteredCity = voter.RegisteredCity
		}
	}

	id, err := s.recorder.Record(ctx, sig)
	if err != nil {
		return nil, err
	}

	s.logger.Info("signature recorded",
		zap.String("batch_id", batch.ID.Hex()),
		zap.String("classification", string(classification)))
	return &RecordResult{SignatureID: id, BatchID: batch.ID, Cleared: true}, nil
}
