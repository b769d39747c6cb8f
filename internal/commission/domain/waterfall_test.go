package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	testPaidAt = time.Date(2025, time.February, 3, 10, 0, 0, 0, time.UTC)
	testNow    = time.Date(2025, time.February, 10, 9, 0, 0, 0, time.UTC)
)

const (
	coachUserID    snowflake.ID = 1
	closerUserID   snowflake.ID = 2
	setterUserID   snowflake.ID = 3
	referrerUserID snowflake.ID = 4
)

func baseInputs() CalculationInputs {
	setter := setterUserID
	client := Client{
		ID:                  100,
		AssignedCoachID:     coachUserID,
		AppointmentSetterID: &setter,
		LeadSource:          LeadSourceCompanyDriven,
		StartDate:           testNow.AddDate(0, -1, 0),
	}
	schedule := PaymentSchedule{
		ID:       200,
		ClientID: 100,
		Splits: []CommissionSplit{
			{ScheduleID: 200, UserID: closerUserID, Role: ScheduleRoleCloser, Percentage: dec("10")},
			{ScheduleID: 200, UserID: referrerUserID, Role: ScheduleRoleReferrer},
		},
	}
	return CalculationInputs{
		Payment: Payment{
			ID:                300,
			ClientID:          100,
			GrossAmountCents:  100000,
			ProcessorFeeCents: 3000,
			PaidAt:            testPaidAt,
		},
		Client:   &client,
		Schedule: &schedule,
		Coaches:  map[snowflake.ID]CoachProfile{coachUserID: {ID: coachUserID}},
		Settings: DefaultRateSettings(),
		Now:      testNow,
	}
}

func entryFor(t *testing.T, entries []CommissionLedgerEntry, role SplitRole) CommissionLedgerEntry {
	t.Helper()
	for _, e := range entries {
		if e.SplitRole == role {
			return e
		}
	}
	t.Fatalf("no %s entry in %d entries", role, len(entries))
	return CommissionLedgerEntry{}
}

func TestCalculateEndToEnd(t *testing.T) {
	// $1000 gross, $30 fee, closer at 10%, setter present, referrer armed,
	// coach at the 50% company-lead default.
	in := baseInputs()
	in.Client.AppointmentSetterID = nil
	in.Schedule.Splits = in.Schedule.Splits[:1] // closer only

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	closer := entryFor(t, entries, SplitRoleCloser)
	if closer.CommissionAmountCents != 10000 {
		t.Fatalf("closer commission: expected 10000, got %d", closer.CommissionAmountCents)
	}
	if closer.NetAmountCents != 97000 {
		t.Fatalf("closer net: expected 97000, got %d", closer.NetAmountCents)
	}
	if closer.EntryType != EntryTypeSplit {
		t.Fatalf("closer entry type: expected split, got %s", closer.EntryType)
	}

	coach := entryFor(t, entries, SplitRoleCoach)
	if coach.CommissionAmountCents != 43500 {
		t.Fatalf("coach commission: expected 43500 (half of 97000-10000), got %d", coach.CommissionAmountCents)
	}
	if coach.EntryType != EntryTypeCommission {
		t.Fatalf("coach entry type: expected commission, got %s", coach.EntryType)
	}

	basis, err := DecodeBasis(coach.CalculationBasis)
	if err != nil {
		t.Fatalf("decode coach basis: %v", err)
	}
	coachBasis, ok := basis.(CoachBasis)
	if !ok {
		t.Fatalf("expected CoachBasis, got %T", basis)
	}
	if coachBasis.RemainderCents != 87000 || coachBasis.DeductedCents != 10000 {
		t.Fatalf("coach basis mismatch: %+v", coachBasis)
	}

	period := PeriodFor(testPaidAt)
	for _, e := range entries {
		if !e.PayoutPeriodStart.Equal(period.PeriodStart) || !e.PayoutDate.Equal(period.PayoutDate) {
			t.Fatalf("entry period mismatch: %+v", e)
		}
		if e.Status != EntryStatusPending {
			t.Fatalf("new entries must be pending, got %s", e.Status)
		}
	}
}

func TestCalculateFullWaterfallOrder(t *testing.T) {
	in := baseInputs()
	in.PriorClientEntries = 0

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	wantOrder := []SplitRole{SplitRoleCloser, SplitRoleSetter, SplitRoleReferrer, SplitRoleCoach}
	for i, role := range wantOrder {
		if entries[i].SplitRole != role {
			t.Fatalf("entry %d: expected role %s, got %s", i, role, entries[i].SplitRole)
		}
	}

	// 97000 net - 10000 closer - 10000 setter - 10000 referrer = 67000; half.
	coach := entries[3]
	if coach.CommissionAmountCents != 33500 {
		t.Fatalf("coach commission: expected 33500, got %d", coach.CommissionAmountCents)
	}
}

func TestCalculateReferrerFiresOnlyOnFirstEntry(t *testing.T) {
	in := baseInputs()
	in.PriorClientEntries = 0
	first, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate first: %v", err)
	}
	foundReferrer := false
	for _, e := range first {
		if e.SplitRole == SplitRoleReferrer {
			foundReferrer = true
			if e.CommissionAmountCents != in.Settings.ReferrerFlatFeeCents {
				t.Fatalf("referrer bonus is flat, expected %d, got %d", in.Settings.ReferrerFlatFeeCents, e.CommissionAmountCents)
			}
		}
	}
	if !foundReferrer {
		t.Fatalf("first payment must carry the referrer bonus")
	}

	in.PriorClientEntries = int64(len(first))
	second, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate second: %v", err)
	}
	for _, e := range second {
		if e.SplitRole == SplitRoleReferrer {
			t.Fatalf("referrer bonus must not recur on later payments")
		}
	}
}

func TestCalculateGrossBasisSurvivesLargeFees(t *testing.T) {
	in := baseInputs()
	in.Client.AppointmentSetterID = nil
	in.Schedule.Splits = in.Schedule.Splits[:1]
	in.Payment.ProcessorFeeCents = 95000 // net pool 5000, below the closer cut

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	closer := entryFor(t, entries, SplitRoleCloser)
	if closer.CommissionAmountCents != 10000 {
		t.Fatalf("closer is gross-based and fee-insulated: expected 10000, got %d", closer.CommissionAmountCents)
	}
	for _, e := range entries {
		if e.SplitRole == SplitRoleCoach {
			t.Fatalf("coach entry must be suppressed when the remainder goes negative")
		}
	}
}

func TestCalculateNoNetPool(t *testing.T) {
	in := baseInputs()
	in.Payment.ProcessorFeeCents = in.Payment.GrossAmountCents

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("zero net pool must produce zero entries, got %d", len(entries))
	}
}

func TestCalculateAlreadyProcessed(t *testing.T) {
	in := baseInputs()
	in.Payment.CommissionCalculated = true
	if _, err := Calculate(in); !errors.Is(err, ErrAlreadyCalculated) {
		t.Fatalf("expected ErrAlreadyCalculated, got %v", err)
	}
}

func TestCalculateMissingClient(t *testing.T) {
	in := baseInputs()
	in.Client = nil
	if _, err := Calculate(in); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestCalculateCoachZeroOverrideSuppressesEntry(t *testing.T) {
	in := baseInputs()
	in.Coaches[coachUserID] = CoachProfile{ID: coachUserID, CommissionRate: decPtr("0")}

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	for _, e := range entries {
		if e.SplitRole == SplitRoleCoach {
			t.Fatalf("explicit zero override must suppress the coach entry")
		}
	}
}

func TestCalculateOneEntryPerUserPerPayment(t *testing.T) {
	// The coach also closed the deal; only the earlier closer role pays out.
	in := baseInputs()
	in.Client.AppointmentSetterID = nil
	in.Schedule.Splits = []CommissionSplit{
		{ScheduleID: 200, UserID: coachUserID, Role: ScheduleRoleCloser},
	}

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single entry for the dual-role user, got %d", len(entries))
	}
	if entries[0].SplitRole != SplitRoleCloser {
		t.Fatalf("the first role in waterfall order wins, got %s", entries[0].SplitRole)
	}
}

func TestCalculateNoScheduleStillPaysCoach(t *testing.T) {
	in := baseInputs()
	in.Client.AppointmentSetterID = nil
	in.Schedule = nil

	entries, err := Calculate(in)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(entries) != 1 || entries[0].SplitRole != SplitRoleCoach {
		t.Fatalf("expected only a coach entry, got %+v", entries)
	}
	// Nothing deducted: the coach takes half the full net pool.
	if entries[0].CommissionAmountCents != 48500 {
		t.Fatalf("expected 48500, got %d", entries[0].CommissionAmountCents)
	}
}
