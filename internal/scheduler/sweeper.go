// Package scheduler re-drives payments that are still unprocessed, either
// because they were never picked up or because an earlier run failed before
// its ledger write committed.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/coachware/commission/internal/commission/domain"
	obscontext "github.com/coachware/commission/internal/observability/context"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Svc    domain.Service
	Config Config `optional:"true"`
}

// Sweeper periodically scans for payments with commission_calculated = false
// and no review flag, and runs the calculator on each. Payments whose write
// failed stay unprocessed and are retried on the next pass.
type Sweeper struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
	svc  domain.Service
	cfg  Config
}

func NewSweeper(p Params) *Sweeper {
	return &Sweeper{
		db:   p.DB,
		log:  p.Log.Named("commission.sweeper"),
		repo: p.Repo,
		svc:  p.Svc,
		cfg:  p.Config.withDefaults(),
	}
}

func (s *Sweeper) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("commission sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch of unprocessed payments and reports how many
// were handled. A failure on one payment does not stop the batch.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if s.db == nil || s.repo == nil || s.svc == nil {
		return 0, errors.New("sweeper_unavailable")
	}
	ctx = obscontext.WithActor(ctx, "system", "sweeper")

	scanCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	ids, err := s.repo.ListUnprocessedPaymentIDs(scanCtx, s.db, s.cfg.BatchSize)
	cancel()
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range ids {
		payCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
		result, err := s.svc.ProcessPayment(payCtx, id)
		cancel()
		if err != nil {
			s.log.Warn("payment sweep: calculation failed, will retry",
				zap.String("payment_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		if result.Outcome == domain.OutcomeCalculated {
			processed++
		}
	}
	return processed, nil
}
