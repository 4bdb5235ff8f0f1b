package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/dto"
	"github.com/quantabook/ledgercore/internal/platform/logging"
)

// maxArchiveBatches bounds a single retention run. A run that hits the cap
// stops cleanly; the next scheduled run picks up where it left off.
const maxArchiveBatches = 10000

type fxAuditService struct {
	fxAuditRepo portsrepo.FxAuditRepositoryFacade
}

// NewFxAuditService creates the rate audit trail retention service.
func NewFxAuditService(fxAuditRepo portsrepo.FxAuditRepositoryFacade) portssvc.FxAuditSvcFacade {
	return &fxAuditService{fxAuditRepo: fxAuditRepo}
}

var _ portssvc.FxAuditSvcFacade = (*fxAuditService)(nil)

// Plan computes the cutoff and the batch estimate without touching any row.
func (s *fxAuditService) Plan(ctx context.Context, now time.Time, req dto.PlanFxAuditTTLRequest) (*domain.ArchivePlan, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	cutoff := now.UTC().AddDate(0, 0, -req.RetentionDays)
	count, err := s.fxAuditRepo.CountEventsBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count events before cutoff: %w", err)
	}

	batches := int((count + int64(req.BatchSize) - 1) / int64(req.BatchSize))
	return &domain.ArchivePlan{
		Cutoff:           cutoff,
		BatchSize:        req.BatchSize,
		EstimatedBatches: batches,
	}, nil
}

// Execute runs the plan batch by batch. Each batch is one atomic copy+delete,
// so an interrupted run leaves every already-moved event safely in the
// archive and nothing duplicated or lost. With dryRun only counts are taken.
func (s *fxAuditService) Execute(ctx context.Context, plan domain.ArchivePlan, dryRun bool) (*domain.ArchiveResult, error) {
	logger := logging.FromCtx(ctx)

	if plan.BatchSize < 1 {
		return nil, apperrors.NewValidationError("batchSize", "must be at least 1")
	}

	if dryRun {
		count, err := s.fxAuditRepo.CountEventsBefore(ctx, plan.Cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to count events before cutoff: %w", err)
		}
		batches := int((count + int64(plan.BatchSize) - 1) / int64(plan.BatchSize))
		return &domain.ArchiveResult{
			ArchivedCount: count,
			DeletedCount:  count,
			Batches:       batches,
			DryRun:        true,
		}, nil
	}

	result := &domain.ArchiveResult{}
	for result.Batches < maxArchiveBatches {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		moved, err := s.fxAuditRepo.ArchiveBatch(ctx, plan.Cutoff, plan.BatchSize)
		if err != nil {
			return result, fmt.Errorf("failed to archive batch %d: %w", result.Batches+1, err)
		}
		if moved == 0 {
			break
		}
		result.Batches++
		result.ArchivedCount += moved
		result.DeletedCount += moved
	}

	logger.Info("Rate audit retention run finished",
		slog.Time("cutoff", plan.Cutoff),
		slog.Int64("archived", result.ArchivedCount),
		slog.Int("batches", result.Batches),
	)
	return result, nil
}
