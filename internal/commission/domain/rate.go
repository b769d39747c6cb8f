package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// commissionWindowMonths bounds how long a non-resign client generates coach
// commission after their start date.
const commissionWindowMonths = 6

// ResolveCoachRate returns the coach's commission rate for a client. The
// precedence chain is evaluated top-down and the first applicable rule wins:
//
//  1. the coach's explicit rate override, including an explicit zero
//  2. the coach's per-lead-source rate config
//  3. the resign rate for returning clients
//  4. zero once the commission window has expired for non-resign clients
//  5. the lead-source default
//
// It never fails; callers emit a coach entry only when the rate and the
// resulting amount are both positive.
func ResolveCoachRate(coach CoachProfile, client Client, settings RateSettings, now time.Time) decimal.Decimal {
	if coach.CommissionRate != nil {
		return *coach.CommissionRate
	}

	if coach.Config != nil {
		if client.LeadSource == LeadSourceCompanyDriven {
			if coach.Config.CompanyLeadRate != nil {
				return *coach.Config.CompanyLeadRate
			}
		} else if coach.Config.SelfGenRate != nil {
			return *coach.Config.SelfGenRate
		}
	}

	if client.IsResign {
		return settings.ResignRate
	}

	if now.After(client.StartDate.AddDate(0, commissionWindowMonths, 0)) {
		return decimal.Zero
	}

	if client.LeadSource == LeadSourceCompanyDriven {
		return settings.CompanyLeadRate
	}
	return settings.CoachLeadRate
}
