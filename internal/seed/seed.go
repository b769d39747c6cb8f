// Package seed loads a small demo dataset for local development: one coach,
// one client with a closer split, and an unprocessed payment the sweep worker
// will pick up. Seeding is idempotent and never runs in production.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coachware/commission/internal/commission/domain"
	"gorm.io/gorm"
)

const (
	demoCoachName  = "Demo Coach"
	demoGrossCents = int64(100000)
	demoFeeCents   = int64(3000)
)

// EnsureDemoData seeds the demo coach, client, schedule, and payment. Rows are
// keyed by name or presence, so repeated startups do not duplicate anything.
func EnsureDemoData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coach, err := ensureDemoCoach(ctx, tx, node)
		if err != nil {
			return err
		}
		client, err := ensureDemoClient(ctx, tx, node, coach.ID)
		if err != nil {
			return err
		}
		if _, err := ensureDemoSchedule(ctx, tx, node, client.ID); err != nil {
			return err
		}
		return ensureDemoPayment(ctx, tx, node, client.ID)
	})
}

func ensureDemoCoach(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (domain.CoachProfile, error) {
	var coach domain.CoachProfile
	err := tx.WithContext(ctx).Where("name = ?", demoCoachName).First(&coach).Error
	if err == nil {
		return coach, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return coach, err
	}
	now := time.Now().UTC()
	coach = domain.CoachProfile{
		ID:        node.Generate(),
		Name:      demoCoachName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&coach).Error; err != nil {
		return coach, err
	}
	return coach, nil
}

func ensureDemoClient(ctx context.Context, tx *gorm.DB, node *snowflake.Node, coachID snowflake.ID) (domain.Client, error) {
	var client domain.Client
	err := tx.WithContext(ctx).Where("assigned_coach_id = ?", coachID).First(&client).Error
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return client, err
	}
	now := time.Now().UTC()
	client = domain.Client{
		ID:              node.Generate(),
		AssignedCoachID: coachID,
		LeadSource:      domain.LeadSourceCompanyDriven,
		StartDate:       now.AddDate(0, -1, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Omit("CoachHistory").Create(&client).Error; err != nil {
		return client, err
	}
	return client, nil
}

func ensureDemoSchedule(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clientID snowflake.ID) (domain.PaymentSchedule, error) {
	var schedule domain.PaymentSchedule
	err := tx.WithContext(ctx).Where("client_id = ?", clientID).First(&schedule).Error
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return schedule, err
	}
	now := time.Now().UTC()
	schedule = domain.PaymentSchedule{
		ID:        node.Generate(),
		ClientID:  clientID,
		CreatedAt: now,
	}
	if err := tx.WithContext(ctx).Omit("Splits").Create(&schedule).Error; err != nil {
		return schedule, err
	}
	split := domain.CommissionSplit{
		ID:         node.Generate(),
		ScheduleID: schedule.ID,
		UserID:     node.Generate(),
		Role:       domain.ScheduleRoleCloser,
		CreatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(&split).Error; err != nil {
		return schedule, err
	}
	return schedule, nil
}

func ensureDemoPayment(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clientID snowflake.ID) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	payment := domain.Payment{
		ID:                node.Generate(),
		ClientID:          clientID,
		GrossAmountCents:  demoGrossCents,
		ProcessorFeeCents: demoFeeCents,
		PaidAt:            now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return tx.WithContext(ctx).Create(&payment).Error
}
