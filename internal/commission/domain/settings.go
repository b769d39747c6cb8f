package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Setting keys read from the commission_settings table.
const (
	SettingCloserRate      = "closer_rate"
	SettingSetterRate      = "setter_rate"
	SettingReferrerFlatFee = "referrer_flat_fee"
	SettingResignRate      = "commission_rate_resign"
	SettingCompanyLeadRate = "commission_rate_company_lead"
	SettingCoachLeadRate   = "commission_rate_coach_lead"
)

// RateSettings is the resolved, immutable rate configuration for one
// calculation run. Rates are fractions in [0,1]; the referrer fee is cents.
type RateSettings struct {
	CloserRate           decimal.Decimal
	SetterRate           decimal.Decimal
	ReferrerFlatFeeCents int64
	ResignRate           decimal.Decimal
	CompanyLeadRate      decimal.Decimal
	CoachLeadRate        decimal.Decimal
}

// DefaultRateSettings are the hard-coded fallbacks applied when a key is
// absent from the store.
func DefaultRateSettings() RateSettings {
	return RateSettings{
		CloserRate:           decimal.RequireFromString("0.10"),
		SetterRate:           decimal.RequireFromString("0.10"),
		ReferrerFlatFeeCents: 10000,
		ResignRate:           decimal.RequireFromString("0.70"),
		CompanyLeadRate:      decimal.RequireFromString("0.50"),
		CoachLeadRate:        decimal.RequireFromString("0.70"),
	}
}

// RateSettingsProvider resolves the current rate settings, typically from a
// cached read of the settings table. Implementations must be safe for
// concurrent use.
type RateSettingsProvider interface {
	Resolve(ctx context.Context) (RateSettings, error)
	Invalidate()
}
