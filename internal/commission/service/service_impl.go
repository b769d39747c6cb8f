package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/coachware/commission/internal/clock"
	"github.com/coachware/commission/internal/commission/domain"
	"github.com/coachware/commission/internal/events"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Settings domain.RateSettingsProvider
	Outbox   *events.Outbox
}

// Service computes and persists commission ledger entries. Each payment is
// processed inside a single transaction: the ledger rows, the notification
// events, and the processed flag commit together or not at all.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	settings domain.RateSettingsProvider
	outbox   *events.Outbox
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("commission.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		settings: p.Settings,
		outbox:   p.Outbox,
	}
}

func (s *Service) ProcessPayment(ctx context.Context, paymentID snowflake.ID) (domain.Result, error) {
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("resolve rate settings: %w", err)
	}

	result := domain.Result{Outcome: domain.OutcomeCalculated}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrPaymentNotFound
		}
		if payment.CommissionCalculated {
			result.Outcome = domain.OutcomeAlreadyProcessed
			return nil
		}

		client, err := s.repo.FindClient(ctx, tx, payment.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			if err := s.repo.MarkPendingReview(ctx, tx, paymentID); err != nil {
				return err
			}
			flagged := events.Event{
				Type: events.EventPaymentFlaggedReview,
				Payload: map[string]any{
					"payment_id": paymentID.String(),
					"client_id":  payment.ClientID.String(),
					"reason":     "client_not_found",
				},
				DedupeKey: fmt.Sprintf("%s:%s", events.EventPaymentFlaggedReview, paymentID),
			}
			if err := s.outbox.PublishTx(ctx, tx, flagged); err != nil {
				return err
			}
			result.Outcome = domain.OutcomeFlaggedForReview
			s.log.Warn("payment flagged for review: client not found",
				zap.String("payment_id", paymentID.String()),
				zap.String("client_id", payment.ClientID.String()),
			)
			return nil
		}

		inputs, err := s.assembleInputs(ctx, tx, *payment, client, settings)
		if err != nil {
			return err
		}

		entries, err := domain.Calculate(inputs)
		if err != nil {
			return err
		}
		if len(entries) == 0 && payment.NetPoolCents() <= 0 {
			s.log.Warn("payment has no distributable net pool",
				zap.String("payment_id", paymentID.String()),
				zap.Int64("gross_cents", payment.GrossAmountCents),
				zap.Int64("fee_cents", payment.ProcessorFeeCents),
			)
		}

		now := s.clock.Now()
		for i := range entries {
			entries[i].ID = s.genID.Generate()
			entries[i].CreatedAt = now
		}
		if err := s.repo.InsertEntries(ctx, tx, entries); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
		}

		// The conditional flip doubles as the per-payment mutual exclusion:
		// a concurrent run that lost the race rolls back its entire write.
		flipped, err := s.repo.MarkCalculated(ctx, tx, paymentID)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
		}
		if !flipped {
			return domain.ErrAlreadyCalculated
		}

		for _, entry := range entries {
			if err := s.publishEarned(ctx, tx, entry); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
			}
		}

		result.EntriesWritten = len(entries)
		return nil
	})
	if errors.Is(err, domain.ErrAlreadyCalculated) {
		return domain.Result{Outcome: domain.OutcomeAlreadyProcessed}, nil
	}
	if err != nil {
		return domain.Result{}, err
	}

	if result.Outcome == domain.OutcomeCalculated {
		s.log.Info("commission calculated",
			zap.String("payment_id", paymentID.String()),
			zap.Int("entries", result.EntriesWritten),
		)
	}
	return result, nil
}

func (s *Service) EntriesForPayment(ctx context.Context, paymentID snowflake.ID) ([]domain.CommissionLedgerEntry, error) {
	return s.repo.ListEntriesByPayment(ctx, nil, paymentID)
}

// assembleInputs gathers every read the calculation needs into one immutable
// snapshot so the waterfall itself stays pure.
func (s *Service) assembleInputs(
	ctx context.Context,
	tx *gorm.DB,
	payment domain.Payment,
	client *domain.Client,
	settings domain.RateSettings,
) (domain.CalculationInputs, error) {
	schedule, err := s.repo.FindLatestSchedule(ctx, tx, client.ID)
	if err != nil {
		return domain.CalculationInputs{}, err
	}

	coachIDs := make([]snowflake.ID, 0, len(client.CoachHistory)+2)
	if client.AssignedCoachID != 0 {
		coachIDs = append(coachIDs, client.AssignedCoachID)
	}
	for _, assignment := range client.CoachHistory {
		coachIDs = append(coachIDs, assignment.CoachID)
	}
	if schedule != nil && schedule.AssignedCoachID != 0 {
		coachIDs = append(coachIDs, schedule.AssignedCoachID)
	}
	coaches, err := s.repo.FindCoachProfiles(ctx, tx, coachIDs)
	if err != nil {
		return domain.CalculationInputs{}, err
	}

	prior, err := s.repo.CountClientEntries(ctx, tx, client.ID)
	if err != nil {
		return domain.CalculationInputs{}, err
	}

	return domain.CalculationInputs{
		Payment:            payment,
		Client:             client,
		Schedule:           schedule,
		Coaches:            coaches,
		Settings:           settings,
		PriorClientEntries: prior,
		Now:                s.clock.Now(),
	}, nil
}

func (s *Service) publishEarned(ctx context.Context, tx *gorm.DB, entry domain.CommissionLedgerEntry) error {
	payload := events.CommissionEarnedPayload{
		UserID:      entry.UserID.String(),
		AmountCents: entry.CommissionAmountCents,
		Role:        string(entry.SplitRole),
		ClientID:    entry.ClientID.String(),
		PaymentID:   entry.PaymentID.String(),
	}
	return s.outbox.PublishTx(ctx, tx, events.Event{
		Type:      events.EventCommissionEarned,
		Payload:   payload.ToMap(),
		DedupeKey: fmt.Sprintf("%s:%s:%s", events.EventCommissionEarned, entry.UserID, entry.PaymentID),
	})
}
