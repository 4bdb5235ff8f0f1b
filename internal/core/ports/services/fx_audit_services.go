package services

import (
	"context"
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/quantabook/ledgercore/internal/dto"
)

// FxAuditSvcFacade is the TTL archival policy over the rate audit trail.
type FxAuditSvcFacade interface {
	// Plan computes the cutoff and estimated batch count for a retention run.
	// Read-only: nothing is mutated.
	Plan(ctx context.Context, now time.Time, req dto.PlanFxAuditTTLRequest) (*domain.ArchivePlan, error)

	// Execute moves qualifying events to the archive batch by batch, each
	// batch one atomic copy+delete. dryRun computes counts without mutating.
	Execute(ctx context.Context, plan domain.ArchivePlan, dryRun bool) (*domain.ArchiveResult, error)
}
