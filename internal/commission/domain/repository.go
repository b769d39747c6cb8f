package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the engine's data access surface. Calls take the handle
// explicitly so the service can run a whole payment inside one transaction.
type Repository interface {
	FindPayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindClient(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Client, error)
	FindLatestSchedule(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (*PaymentSchedule, error)
	FindCoachProfiles(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]CoachProfile, error)
	CountClientEntries(ctx context.Context, db *gorm.DB, clientID snowflake.ID) (int64, error)

	// InsertEntries bulk-writes ledger rows, ignoring rows whose
	// (user_id, payment_id) pair already exists.
	InsertEntries(ctx context.Context, db *gorm.DB, entries []CommissionLedgerEntry) error

	// MarkCalculated conditionally flips the processed flag; false means a
	// concurrent run already claimed the payment.
	MarkCalculated(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (bool, error)

	MarkPendingReview(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error
	ListEntriesByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]CommissionLedgerEntry, error)
	ListUnprocessedPaymentIDs(ctx context.Context, db *gorm.DB, limit int) ([]snowflake.ID, error)
}
