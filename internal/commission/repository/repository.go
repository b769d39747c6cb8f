package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coachware/commission/internal/commission/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepositoryImpl struct {
	db *gorm.DB
}

// Provide builds the default repository implementation.
func Provide(db *gorm.DB) domain.Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) handle(db *gorm.DB) *gorm.DB {
	if db != nil {
		return db
	}
	return r.db
}

func (r *RepositoryImpl) FindPayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.handle(db).WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *RepositoryImpl) FindClient(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := r.handle(db).WithContext(ctx).
		Preload("CoachHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *RepositoryImpl) FindLatestSchedule(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*domain.PaymentSchedule, error) {
	var schedule domain.PaymentSchedule
	err := r.handle(db).WithContext(ctx).
		Preload("Splits").
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *RepositoryImpl) FindCoachProfiles(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]domain.CoachProfile, error) {
	profiles := make(map[snowflake.ID]domain.CoachProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	var rows []domain.CoachProfile
	if err := r.handle(db).WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		profiles[row.ID] = row
	}
	return profiles, nil
}

func (r *RepositoryImpl) CountClientEntries(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error) {
	var count int64
	err := r.handle(db).WithContext(ctx).
		Model(&domain.CommissionLedgerEntry{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) InsertEntries(ctx context.Context, db *gorm.DB, entries []domain.CommissionLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.handle(db).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "payment_id"}},
			DoNothing: true,
		}).
		Create(&entries).Error
}

func (r *RepositoryImpl) MarkCalculated(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (bool, error) {
	result := r.handle(db).WithContext(ctx).Exec(
		`UPDATE payments
		 SET commission_calculated = ?, updated_at = ?
		 WHERE id = ? AND commission_calculated = ?`,
		true,
		time.Now().UTC(),
		paymentID,
		false,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *RepositoryImpl) MarkPendingReview(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error {
	return r.handle(db).WithContext(ctx).Exec(
		`UPDATE payments
		 SET review_status = ?, updated_at = ?
		 WHERE id = ? AND review_status IS NULL`,
		domain.ReviewStatusPendingReview,
		time.Now().UTC(),
		paymentID,
	).Error
}

func (r *RepositoryImpl) ListEntriesByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]domain.CommissionLedgerEntry, error) {
	var entries []domain.CommissionLedgerEntry
	err := r.handle(db).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *RepositoryImpl) ListUnprocessedPaymentIDs(ctx context.Context, db *gorm.DB, limit int) ([]snowflake.ID, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []snowflake.ID
	err := r.handle(db).WithContext(ctx).Raw(
		`SELECT id
		 FROM payments
		 WHERE commission_calculated = ? AND review_status IS NULL
		 ORDER BY paid_at ASC, id ASC
		 LIMIT ?`,
		false,
		limit,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
