package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/helpers/utils"
)

// BatchAdminRepo is the reconcile path's view of batch persistence.
type BatchAdminRepo interface {
	All(ctx context.Context) ([]models.Batch, error)
	SetCounters(ctx context.Context, id primitive.ObjectID, c models.BatchCounters) error
}

// SignatureAggregator re-derives counters from the signature rows.
type SignatureAggregator interface {
	CountByBatch(ctx context.Context, batchID primitive.ObjectID) (models.BatchCounters, error)
	ProgressStats(ctx context.Context, homeCity string) (*models.ProgressStats, error)
}

// RegistryAdmin is the import/maintenance view of the voter registry.
type RegistryAdmin interface {
	EnsureIndexes(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// VoterImporter streams a voter file into the registry, returning the row
// count. Implemented by importer.Importer.
type VoterImporter interface {
	Run(ctx context.Context, path string, replace bool) (int, error)
}

// ImportJob tracks one background voter-file import.
type ImportJob struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Import job states.
const (
	ImportStatusRunning = "running"
	ImportStatusDone    = "done"
	ImportStatusFailed  = "failed"
)

// ReconcileReport lists the batches whose stored counters disagreed with
// their signature rows and were rewritten.
type ReconcileReport struct {
	Checked   int      `json:"checked"`
	Rewritten []string `json:"rewritten,omitempty"`
}

// AdminService owns the maintenance surface: progress stats, counter
// reconciliation, index builds, cache invalidation and import jobs.
type AdminService struct {
	batches    BatchAdminRepo
	signatures SignatureAggregator
	registry   RegistryAdmin
	importer   VoterImporter
	cache      ResultCache
	homeCity   string
	logger     *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*ImportJob
}

// NewAdminService wires the admin service.
func NewAdminService(batches BatchAdminRepo, signatures SignatureAggregator, registry RegistryAdmin, importer VoterImporter, cache ResultCache, homeCity string, logger *zap.Logger) *AdminService {
	return &AdminService{
		batches:    batches,
		signatures: signatures,
		registry:   registry,
		importer:   importer,
		cache:      cache,
		homeCity:   homeCity,
		logger:     logger,
		jobs:       make(map[string]*ImportJob),
	}
}

// ProgressStats aggregates verification progress over all signatures.
func (as *AdminService) ProgressStats(ctx context.Context) (*models.ProgressStats, error) {
	stats, err := as.signatures.ProgressStats(ctx, as.homeCity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return stats, nil
}

// ReconcileCounters re-aggregates every batch's signature rows and
// rewrites any stored counters that drifted. Counters are derived data;
// the signature rows stay authoritative.
func (as *AdminService) ReconcileCounters(ctx context.Context) (*ReconcileReport, error) {
	batches, err := as.batches.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	report := &ReconcileReport{Checked: len(batches)}
	for _, b := range batches {
		derived, err := as.signatures.CountByBatch(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if derived == b.Counters {
			continue
		}
		if err := as.batches.SetCounters(ctx, b.ID, derived); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		as.logger.Warn("batch counters drifted, rewritten",
			zap.String("batch_id", b.ID.Hex()),
			zap.Int64("matches", derived.Matches),
			zap.Int64("address_only", derived.AddressOnly),
			zap.Int64("no_match", derived.NoMatch))
		report.Rewritten = append(report.Rewritten, b.ID.Hex())
	}
	return report, nil
}

// BuildIndexes creates the registry search indexes.
func (as *AdminService) BuildIndexes(ctx context.Context) error {
	if err := as.registry.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// InvalidateCache drops the cached search results.
func (as *AdminService) InvalidateCache(ctx context.Context) error {
	return as.cache.Clear(ctx)
}

// CacheStats reports result-cache counters.
func (as *AdminService) CacheStats(ctx context.Context) (*CacheStats, error) {
	return as.cache.Stats(ctx)
}

// RegistryCount reports the number of imported voter rows.
func (as *AdminService) RegistryCount(ctx context.Context) (int64, error) {
	n, err := as.registry.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return n, nil
}

// StartImport launches a background voter-file import and returns its job
// id for status polling. The search cache is cleared when the import
// finishes, since every cached result is against the old snapshot.
func (as *AdminService) StartImport(path string, replace bool) string {
	jobID := utils.GenerateUUID()
	now := time.Now()

	as.mu.Lock()
	as.jobs[jobID] = &ImportJob{
		JobID:     jobID,
		Status:    ImportStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	as.mu.Unlock()

	go func() {
		ctx := context.Background()
		rows, err := as.importer.Run(ctx, path, replace)

		as.mu.Lock()
		job := as.jobs[jobID]
		job.Rows = rows
		job.UpdatedAt = time.Now()
		if err != nil {
			job.Status = ImportStatusFailed
			job.Error = err.Error()
		} else {
			job.Status = ImportStatusDone
		}
		as.mu.Unlock()

		if err != nil {
			as.logger.Error("voter import failed", zap.String("job_id", jobID), zap.Error(err))
			return
		}
		if cerr := as.cache.Clear(ctx); cerr != nil {
			as.logger.Warn("cache clear after import failed", zap.Error(cerr))
		}
		as.logger.Info("voter import finished",
			zap.String("job_id", jobID),
			zap.Int("rows", rows))
	}()

	return jobID
}

// ImportStatus returns the state of one import job.
func (as *AdminService) ImportStatus(jobID string) (*ImportJob, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	job, ok := as.jobs[jobID]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}
