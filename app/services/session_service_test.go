package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
)

// In-memory fakes over the store interfaces. They mimic the Mongo
// behavior the services rely on, including the partial unique index on
// active batches.

type fakeBooks struct {
	books map[string]*models.Book
}

func newFakeBooks() *fakeBooks { return &fakeBooks{books: make(map[string]*models.Book)} }

func (f *fakeBooks) FindOrCreate(_ context.Context, bookNumber string) (*models.Book, error) {
	if b, ok := f.books[bookNumber]; ok {
		return b, nil
	}
	b := &models.Book{ID: primitive.NewObjectID(), BookNumber: bookNumber, CreatedAt: time.Now()}
	f.books[bookNumber] = b
	return b, nil
}

func (f *fakeBooks) FindByNumber(_ context.Context, bookNumber string) (*models.Book, error) {
	return f.books[bookNumber], nil
}

type fakeCollectors struct {
	collectors map[primitive.ObjectID]*models.Collector
}

func newFakeCollectors(ids ...primitive.ObjectID) *fakeCollectors {
	f := &fakeCollectors{collectors: make(map[primitive.ObjectID]*models.Collector)}
	for _, id := range ids {
		f.collectors[id] = &models.Collector{ID: id, FirstName: "Pat", LastName: "Smith"}
	}
	return f
}

func (f *fakeCollectors) FindByID(_ context.Context, id primitive.ObjectID) (*models.Collector, error) {
	return f.collectors[id], nil
}

type fakeBatches struct {
	batches map[primitive.ObjectID]*models.Batch
	// conflictOnInsert simulates losing the unique-index race.
	conflictOnInsert bool
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{batches: make(map[primitive.ObjectID]*models.Batch)}
}

func (f *fakeBatches) FindActiveByEnterer(_ context.Context, entererID string) (*models.Batch, error) {
	for _, b := range f.batches {
		if b.EntererID == entererID && b.Status == models.BatchStatusActive {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBatches) Insert(_ context.Context, b *models.Batch) error {
	if f.conflictOnInsert {
		return ErrSessionConflict
	}
	// The partial unique index: at most one active batch per enterer.
	for _, existing := range f.batches {
		if existing.EntererID == b.EntererID && existing.Status == models.BatchStatusActive {
			return ErrSessionConflict
		}
	}
	b.ID = primitive.NewObjectID()
	copied := *b
	f.batches[b.ID] = &copied
	return nil
}

func (f *fakeBatches) Close(_ context.Context, id primitive.ObjectID, at time.Time) error {
	if b, ok := f.batches[id]; ok && b.Status == models.BatchStatusActive {
		b.Status = models.BatchStatusClosed
		b.ClosedAt = &at
	}
	return nil
}

func (f *fakeBatches) increment(id primitive.ObjectID, classification models.Classification) bool {
	b, ok := f.batches[id]
	if !ok || b.Status != models.BatchStatusActive {
		return false
	}
	switch classification {
	case models.ClassificationPersonMatch:
		b.Counters.Matches++
	case models.ClassificationAddressOnly:
		b.Counters.AddressOnly++
	case models.ClassificationNoMatch:
		b.Counters.NoMatch++
	}
	return true
}

func newSessionService(books BookRepo, collectors CollectorRepo, batches BatchRepo) *SessionService {
	return NewSessionService(books, collectors, batches, zap.NewNop())
}

func TestStartSessionCreatesBookAndBatch(t *testing.T) {
	collectorID := primitive.NewObjectID()
	books, batches := newFakeBooks(), newFakeBatches()
	svc := newSessionService(books, newFakeCollectors(collectorID), batches)

	batch, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, models.BatchStatusActive, batch.Status)
	assert.Equal(t, "BOOK-7", batch.BookNumber)

	book, err := books.FindByNumber(context.Background(), "BOOK-7")
	require.NoError(t, err)
	require.NotNil(t, book, "book is created lazily on first reference")
	assert.Equal(t, book.ID, batch.BookID)
}

func TestStartSessionReusesExactMatch(t *testing.T) {
	collectorID := primitive.NewObjectID()
	svc := newSessionService(newFakeBooks(), newFakeCollectors(collectorID), newFakeBatches())

	first, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	require.NoError(t, err)
	second, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same (user, book, collector) reuses the active batch")
}

func TestStartSessionClosesOtherActiveBatch(t *testing.T) {
	collectorID := primitive.NewObjectID()
	batches := newFakeBatches()
	svc := newSessionService(newFakeBooks(), newFakeCollectors(collectorID), batches)

	first, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	require.NoError(t, err)
	second, err := svc.StartSession(context.Background(), "user-1", "BOOK-8", collectorID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	closed := batches.batches[first.ID]
	assert.Equal(t, models.BatchStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
}

func TestStartAfterEndYieldsDistinctBatch(t *testing.T) {
	collectorID := primitive.NewObjectID()
	svc := newSessionService(newFakeBooks(), newFakeCollectors(collectorID), newFakeBatches())

	first, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	require.NoError(t, err)
	require.NoError(t, svc.EndSession(context.Background(), "user-1"))

	second, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStartSessionConflictSurfaces(t *testing.T) {
	collectorID := primitive.NewObjectID()
	batches := newFakeBatches()
	batches.conflictOnInsert = true
	svc := newSessionService(newFakeBooks(), newFakeCollectors(collectorID), batches)

	_, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", collectorID)
	assert.ErrorIs(t, err, ErrSessionConflict)
}

func TestStartSessionUnknownCollector(t *testing.T) {
	svc := newSessionService(newFakeBooks(), newFakeCollectors(), newFakeBatches())
	_, err := svc.StartSession(context.Background(), "user-1", "BOOK-7", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrCollectorNotFound)
}

func TestEndSessionNoopWithoutActiveBatch(t *testing.T) {
	svc := newSessionService(newFakeBooks(), newFakeCollectors(), newFakeBatches())
	assert.NoError(t, svc.EndSession(context.Background(), "user-1"))
}
