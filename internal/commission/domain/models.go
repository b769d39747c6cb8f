// Package domain contains the commission engine's models and the pure
// waterfall calculation the engine runs per payment.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LeadSource records how a client was acquired; it drives default coach rates.
type LeadSource string

const (
	LeadSourceCompanyDriven LeadSource = "company_driven"
	LeadSourceCoachDriven   LeadSource = "coach_driven"
)

// SplitRole identifies the recipient's role on a ledger entry.
type SplitRole string

const (
	SplitRoleCoach    SplitRole = "coach"
	SplitRoleCloser   SplitRole = "closer"
	SplitRoleSetter   SplitRole = "setter"
	SplitRoleReferrer SplitRole = "referrer"
)

// EntryType distinguishes engine-computed rows from manual and imported ones.
type EntryType string

const (
	EntryTypeCommission EntryType = "commission"
	EntryTypeSplit      EntryType = "split"
	EntryTypeManual     EntryType = "manual"
	EntryTypeImport     EntryType = "import"
)

// EntryStatus is mutated downstream by payroll runs, never by this engine.
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusPaid    EntryStatus = "paid"
	EntryStatusVoid    EntryStatus = "void"
)

// ReviewStatusPendingReview flags a payment for the human-review workflow.
const ReviewStatusPendingReview = "pending_review"

// Split roles recorded on payment schedules at sale time.
const (
	ScheduleRoleCloser   = "Closer"
	ScheduleRoleReferrer = "Referrer"
)

// Payment is a successful charge delivered by the upstream payment sync.
// This engine only ever sets CommissionCalculated and ReviewStatus.
type Payment struct {
	ID                   snowflake.ID `gorm:"primaryKey"`
	ClientID             snowflake.ID `gorm:"not null;index"`
	GrossAmountCents     int64        `gorm:"not null"`
	ProcessorFeeCents    int64        `gorm:"not null;default:0"`
	PaidAt               time.Time    `gorm:"not null"`
	CommissionCalculated bool         `gorm:"not null;default:false"`
	ReviewStatus         *string      `gorm:"type:text"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// NetPoolCents is the distributable amount after processor fees.
func (p Payment) NetPoolCents() int64 {
	return p.GrossAmountCents - p.ProcessorFeeCents
}

// CoachAssignment is one interval of a client's coaching history. Intervals
// are assumed non-overlapping; Position preserves the recorded order, and the
// first matching interval wins.
type CoachAssignment struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ClientID  snowflake.ID `gorm:"not null;index:ix_coach_assignments_client,priority:1"`
	CoachID   snowflake.ID `gorm:"not null"`
	StartDate time.Time    `gorm:"not null"`
	EndDate   *time.Time   `gorm:""`
	Position  int          `gorm:"not null;default:0;index:ix_coach_assignments_client,priority:2"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CoachAssignment) TableName() string { return "coach_assignments" }

// Active reports whether the interval covers the given instant. An open-ended
// interval (nil EndDate) covers everything from StartDate on.
func (a CoachAssignment) Active(at time.Time) bool {
	if at.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !at.After(*a.EndDate)
}

// Client is the coached customer a payment belongs to.
type Client struct {
	ID                  snowflake.ID      `gorm:"primaryKey"`
	AssignedCoachID     snowflake.ID      `gorm:"not null;default:0"`
	AppointmentSetterID *snowflake.ID     `gorm:""`
	LeadSource          LeadSource        `gorm:"type:text;not null;default:'company_driven'"`
	IsResign            bool              `gorm:"not null;default:false"`
	StartDate           time.Time         `gorm:"not null"`
	CoachHistory        []CoachAssignment `gorm:"foreignKey:ClientID"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// CommissionSplit is a sale-time allocation recorded on a payment schedule.
type CommissionSplit struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	ScheduleID snowflake.ID    `gorm:"not null;index"`
	UserID     snowflake.ID    `gorm:"not null;default:0"`
	Role       string          `gorm:"type:text;not null"`
	Percentage decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CommissionSplit) TableName() string { return "commission_splits" }

// PaymentSchedule snapshots the deal terms at sale time. Read-only here.
type PaymentSchedule struct {
	ID              snowflake.ID      `gorm:"primaryKey"`
	ClientID        snowflake.ID      `gorm:"not null;index"`
	AssignedCoachID snowflake.ID      `gorm:"not null;default:0"`
	Splits          []CommissionSplit `gorm:"foreignKey:ScheduleID"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PaymentSchedule) TableName() string { return "payment_schedules" }

// SplitForRole returns the first split carrying a real user for the role.
func (s *PaymentSchedule) SplitForRole(role string) *CommissionSplit {
	if s == nil {
		return nil
	}
	for i := range s.Splits {
		if s.Splits[i].Role == role && s.Splits[i].UserID != 0 {
			return &s.Splits[i]
		}
	}
	return nil
}

// CoachRateConfig is a per-coach rate override keyed by lead source.
type CoachRateConfig struct {
	CompanyLeadRate *decimal.Decimal `json:"company_lead_rate,omitempty"`
	SelfGenRate     *decimal.Decimal `json:"self_gen_rate,omitempty"`
}

// CoachProfile carries the coach's commission override fields. A non-nil
// CommissionRate always wins, including an explicit zero.
type CoachProfile struct {
	ID             snowflake.ID     `gorm:"primaryKey"`
	Name           string           `gorm:"type:text;not null;default:''"`
	CommissionRate *decimal.Decimal `gorm:"type:numeric(6,4)"`
	Config         *CoachRateConfig `gorm:"column:commission_config;type:jsonb;serializer:json"`
	CreatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CoachProfile) TableName() string { return "users" }

// CommissionSetting is one key/value row of the engine's tunable rates.
type CommissionSetting struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CommissionSetting) TableName() string { return "commission_settings" }

// CommissionLedgerEntry is the auditable output row, one per recipient per
// payment. Uniqueness of (user_id, payment_id) is enforced by the store: a
// user receives at most one row per payment regardless of roles.
type CommissionLedgerEntry struct {
	ID                    snowflake.ID    `gorm:"primaryKey"`
	UserID                snowflake.ID    `gorm:"not null;uniqueIndex:ux_ledger_user_payment,priority:1"`
	ClientID              snowflake.ID    `gorm:"not null;index"`
	PaymentID             snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_ledger_user_payment,priority:2"`
	GrossAmountCents      int64           `gorm:"not null"`
	NetAmountCents        int64           `gorm:"not null"`
	CommissionAmountCents int64           `gorm:"not null"`
	EntryType             EntryType       `gorm:"type:text;not null;default:'commission'"`
	SplitRole             SplitRole       `gorm:"type:text;not null"`
	SplitPercentage       decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	SourceScheduleID      *snowflake.ID   `gorm:""`
	Status                EntryStatus     `gorm:"type:text;not null;default:'pending'"`
	PayoutPeriodStart     time.Time       `gorm:"type:date;not null"`
	PayoutDate            time.Time       `gorm:"type:date;not null"`
	CalculationBasis      datatypes.JSON  `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt             time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CommissionLedgerEntry) TableName() string { return "commission_ledger_entries" }
