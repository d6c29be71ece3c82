package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
)

// BookRepo resolves petition books by label, creating lazily.
type BookRepo interface {
	FindOrCreate(ctx context.Context, bookNumber string) (*models.Book, error)
	FindByNumber(ctx context.Context, bookNumber string) (*models.Book, error)
}

// CollectorRepo resolves collectors.
type CollectorRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collector, error)
}

// BatchRepo owns batch persistence. Insert must fail with
// ErrSessionConflict when the partial unique active-batch index rejects
// a second active batch for the same enterer.
type BatchRepo interface {
	FindActiveByEnterer(ctx context.Context, entererID string) (*models.Batch, error)
	Insert(ctx context.Context, b *models.Batch) error
	Close(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// SessionService owns the book/batch lifecycle: one active batch per user,
// enforced at the storage layer rather than in session cookies.
type SessionService struct {
	books      BookRepo
	collectors CollectorRepo
	batches    BatchRepo
	logger     *zap.Logger
	now        func() time.Time
}

// NewSessionService wires the session service.
func NewSessionService(books BookRepo, collectors CollectorRepo, batches BatchRepo, logger *zap.Logger) *SessionService {
	return &SessionService{
		books:      books,
		collectors: collectors,
		batches:    batches,
		logger:     logger,
		now:        time.Now,
	}
}

// StartSession resolves (or creates) the book, validates the collector,
// and returns the batch for this entry session. Policy: the caller's
// existing active batch is reused only when book and collector both match
// it; any other active batch is closed and a fresh one opened. Losing a
// race against a concurrent start for the same user returns
// ErrSessionConflict.
func (s *SessionService) StartSession(ctx context.Context, entererID, bookNumber string, collectorID primitive.ObjectID) (*models.Batch, error) {
	if entererID == "" || bookNumber == "" {
		return nil, fmt.Errorf("%w: enterer and book number are required", ErrInvalidQuery)
	}

	collector, err := s.collectors.FindByID(ctx, collectorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if collector == nil {
		return nil, ErrCollectorNotFound
	}

	book, err := s.books.FindOrCreate(ctx, bookNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	active, err := s.batches.FindActiveByEnterer(ctx, entererID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if active != nil {
		if active.BookID == book.ID && active.CollectorID == collectorID {
			// Duplicate submit of the same session form; idempotent.
			return active, nil
		}
		if err := s.batches.Close(ctx, active.ID, s.now().UTC()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		s.logger.Info("closed previous batch on new session start",
			zap.String("enterer_id", entererID),
			zap.String("batch_id", active.ID.Hex()))
	}

	batch := &models.Batch{
		BookID:      book.ID,
		BookNumber:  book.BookNumber,
		CollectorID: collectorID,
		EntererID:   entererID,
		Status:      models.BatchStatusActive,
		StartedAt:   s.now().UTC(),
	}
	if err := s.batches.Insert(ctx, batch); err != nil {
		// ErrSessionConflict passes through for the caller to retry.
		return nil, err
	}

	s.logger.Info("started data-entry session",
		zap.String("enterer_id", entererID),
		zap.String("book_number", bookNumber),
		zap.String("batch_id", batch.ID.Hex()))
	return batch, nil
}

// EndSession closes the user's active batch. No-op when none is active.
func (s *SessionService) EndSession(ctx context.Context, entererID string) error {
	if entererID == "" {
		return fmt.Errorf("%w: enterer is required", ErrInvalidQuery)
	}

	active, err := s.batches.FindActiveByEnterer(ctx, entererID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if active == nil {
		return nil
	}
	if err := s.batches.Close(ctx, active.ID, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("ended data-entry session",
		zap.String("enterer_id", entererID),
		zap.String("batch_id", active.ID.Hex()))
	return nil
}

// ActiveBatch returns the user's active batch, or nil.
func (s *SessionService) ActiveBatch(ctx context.Context, entererID string) (*models.Batch, error) {
	b, err := s.batches.FindActiveByEnterer(ctx, entererID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return b, nil
}

// CheckBook reports whether a book label is already known, for the entry
// form's inline lookup.
func (s *SessionService) CheckBook(ctx context.Context, bookNumber string) (*models.Book, error) {
	if bookNumber == "" {
		return nil, nil
	}
	book, err := s.books.FindByNumber(ctx, bookNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return book, nil
}
