package domain

import "time"

// Payout periods are fixed 14-day windows anchored at this epoch Monday.
var periodAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const periodLengthDays = 14

// PayoutPeriod is the pay window a ledger entry is batched into.
type PayoutPeriod struct {
	PeriodStart time.Time
	PayoutDate  time.Time
}

// PeriodFor maps a payment timestamp onto its payout period. The payout date
// is the first Friday strictly after the period's last day; when the period
// ends on a Friday the payout lands on the following one.
func PeriodFor(at time.Time) PayoutPeriod {
	at = at.UTC()
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	days := int(day.Sub(periodAnchor).Hours() / 24)
	index := floorDiv(days, periodLengthDays)

	start := periodAnchor.AddDate(0, 0, index*periodLengthDays)
	end := start.AddDate(0, 0, periodLengthDays-1)

	untilFriday := (int(time.Friday) - int(end.Weekday()) + 7) % 7
	if untilFriday == 0 {
		untilFriday = 7
	}

	return PayoutPeriod{
		PeriodStart: start,
		PayoutDate:  end.AddDate(0, 0, untilFriday),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
