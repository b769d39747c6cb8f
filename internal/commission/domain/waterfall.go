package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CalculationInputs is the immutable snapshot of everything one payment's
// calculation reads. The repository assembles it; Calculate never touches
// a store.
type CalculationInputs struct {
	Payment  Payment
	Client   *Client
	Schedule *PaymentSchedule
	Coaches  map[snowflake.ID]CoachProfile
	Settings RateSettings

	// PriorClientEntries is the count of ledger rows already recorded for
	// this client. Zero means this payment is the client's first, which is
	// what arms the referrer bonus.
	PriorClientEntries int64

	// Now drives the coach commission-window check, not the payout period.
	Now time.Time
}

// Calculate runs the waterfall for one payment and returns the ledger entries
// to persist, in deduction order: closer, setter, referrer, then the coach as
// residual claimant.
//
// Closer and setter commissions are computed on the gross amount so they are
// insulated from processor-fee volatility; only the coach's basis shrinks as
// earlier steps deduct. The coach's remainder may be consumed entirely, in
// which case no coach entry is produced.
//
// A user receives at most one entry per payment; later roles for a user that
// already earned on this payment are skipped.
func Calculate(in CalculationInputs) ([]CommissionLedgerEntry, error) {
	if in.Payment.CommissionCalculated {
		return nil, ErrAlreadyCalculated
	}
	if in.Client == nil {
		return nil, ErrClientNotFound
	}
	client := *in.Client

	netPool := in.Payment.NetPoolCents()
	if netPool <= 0 {
		return nil, nil
	}

	period := PeriodFor(in.Payment.PaidAt)
	seen := make(map[snowflake.ID]struct{}, 4)
	var entries []CommissionLedgerEntry
	var deducted int64

	appendEntry := func(userID snowflake.ID, role SplitRole, entryType EntryType, amount int64, percentage decimal.Decimal, scheduleID *snowflake.ID, basis CalculationBasis) error {
		if amount <= 0 || userID == 0 {
			return nil
		}
		if _, dup := seen[userID]; dup {
			return nil
		}
		encoded, err := EncodeBasis(basis)
		if err != nil {
			return fmt.Errorf("encode %s basis: %w", role, err)
		}
		entries = append(entries, CommissionLedgerEntry{
			UserID:                userID,
			ClientID:              client.ID,
			PaymentID:             in.Payment.ID,
			GrossAmountCents:      in.Payment.GrossAmountCents,
			NetAmountCents:        netPool,
			CommissionAmountCents: amount,
			EntryType:             entryType,
			SplitRole:             role,
			SplitPercentage:       displayPercentage(percentage),
			SourceScheduleID:      scheduleID,
			Status:                EntryStatusPending,
			PayoutPeriodStart:     period.PeriodStart,
			PayoutDate:            period.PayoutDate,
			CalculationBasis:      encoded,
		})
		seen[userID] = struct{}{}
		deducted += amount
		return nil
	}

	var scheduleID *snowflake.ID
	if in.Schedule != nil {
		id := in.Schedule.ID
		scheduleID = &id
	}

	// 1. Closer: gross basis, independent of processor fees.
	if split := in.Schedule.SplitForRole(ScheduleRoleCloser); split != nil {
		amount := applyRate(in.Payment.GrossAmountCents, in.Settings.CloserRate)
		basis := CloserBasis{Rate: in.Settings.CloserRate, GrossCents: in.Payment.GrossAmountCents}
		if err := appendEntry(split.UserID, SplitRoleCloser, EntryTypeSplit, amount, in.Settings.CloserRate, scheduleID, basis); err != nil {
			return nil, err
		}
	}

	// 2. Appointment setter: gross basis.
	if client.AppointmentSetterID != nil && *client.AppointmentSetterID != 0 {
		amount := applyRate(in.Payment.GrossAmountCents, in.Settings.SetterRate)
		basis := SetterBasis{Rate: in.Settings.SetterRate, GrossCents: in.Payment.GrossAmountCents}
		if err := appendEntry(*client.AppointmentSetterID, SplitRoleSetter, EntryTypeSplit, amount, in.Settings.SetterRate, nil, basis); err != nil {
			return nil, err
		}
	}

	// 3. Referrer: one-time flat acquisition bonus, only on the client's
	// first-ever ledger entry.
	if split := in.Schedule.SplitForRole(ScheduleRoleReferrer); split != nil && in.PriorClientEntries == 0 {
		basis := ReferrerBasis{FlatFeeCents: in.Settings.ReferrerFlatFeeCents, IsFirstPayment: true}
		if err := appendEntry(split.UserID, SplitRoleReferrer, EntryTypeSplit, in.Settings.ReferrerFlatFeeCents, decimal.Zero, scheduleID, basis); err != nil {
			return nil, err
		}
	}

	// 4. Coach: residual claimant on whatever the earlier steps left.
	if coachID := ResolveActiveCoach(client, in.Payment.PaidAt); coachID != 0 {
		rate := ResolveCoachRate(in.Coaches[coachID], client, in.Settings, in.Now)
		remainder := netPool - deducted
		amount := applyRate(remainder, rate)
		basis := CoachBasis{
			Rate:           rate,
			NetPoolCents:   netPool,
			DeductedCents:  deducted,
			RemainderCents: remainder,
		}
		if err := appendEntry(coachID, SplitRoleCoach, EntryTypeCommission, amount, rate, nil, basis); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// applyRate multiplies a cent amount by a fractional rate, rounding to the
// nearest cent. Negative inputs stay negative so callers can suppress them.
func applyRate(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(rate).Round(0).IntPart()
}

// displayPercentage stores rates multiplied by 100 for display and audit.
func displayPercentage(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(100))
}
