package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CalculationBasis is the audit payload stored with each ledger entry. It
// carries everything needed to reproduce the computed amount without
// re-querying any other table.
type CalculationBasis interface {
	BasisRole() SplitRole
}

// CloserBasis records a gross-based closer allocation.
type CloserBasis struct {
	Rate       decimal.Decimal `json:"rate"`
	GrossCents int64           `json:"gross_cents"`
	Extra      map[string]any  `json:"extra,omitempty"`
}

func (CloserBasis) BasisRole() SplitRole { return SplitRoleCloser }

// SetterBasis records a gross-based appointment-setter allocation.
type SetterBasis struct {
	Rate       decimal.Decimal `json:"rate"`
	GrossCents int64           `json:"gross_cents"`
	Extra      map[string]any  `json:"extra,omitempty"`
}

func (SetterBasis) BasisRole() SplitRole { return SplitRoleSetter }

// ReferrerBasis records the one-time flat acquisition bonus.
type ReferrerBasis struct {
	FlatFeeCents   int64          `json:"flat_fee_cents"`
	IsFirstPayment bool           `json:"is_first_payment"`
	Extra          map[string]any `json:"extra,omitempty"`
}

func (ReferrerBasis) BasisRole() SplitRole { return SplitRoleReferrer }

// CoachBasis records the residual-claimant coach allocation.
type CoachBasis struct {
	Rate           decimal.Decimal `json:"rate"`
	NetPoolCents   int64           `json:"net_pool_cents"`
	DeductedCents  int64           `json:"deducted_cents"`
	RemainderCents int64           `json:"remainder_cents"`
	Extra          map[string]any  `json:"extra,omitempty"`
}

func (CoachBasis) BasisRole() SplitRole { return SplitRoleCoach }

type basisEnvelope struct {
	Role SplitRole       `json:"role"`
	Data json.RawMessage `json:"data"`
}

// EncodeBasis serializes a basis for storage in the ledger row.
func EncodeBasis(basis CalculationBasis) (datatypes.JSON, error) {
	data, err := json.Marshal(basis)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(basisEnvelope{Role: basis.BasisRole(), Data: data})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeBasis deserializes a stored basis back into its typed form.
func DecodeBasis(raw datatypes.JSON) (CalculationBasis, error) {
	var envelope basisEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	switch envelope.Role {
	case SplitRoleCloser:
		var b CloserBasis
		return b, json.Unmarshal(envelope.Data, &b)
	case SplitRoleSetter:
		var b SetterBasis
		return b, json.Unmarshal(envelope.Data, &b)
	case SplitRoleReferrer:
		var b ReferrerBasis
		return b, json.Unmarshal(envelope.Data, &b)
	case SplitRoleCoach:
		var b CoachBasis
		return b, json.Unmarshal(envelope.Data, &b)
	default:
		return nil, fmt.Errorf("unknown basis role %q", envelope.Role)
	}
}
