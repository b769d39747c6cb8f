package events

// Event types emitted by the commission engine for the notification
// collaborator to deliver.
const (
	EventCommissionEarned     = "commission.earned"
	EventPaymentFlaggedReview = "payment.flagged_for_review"
)

// CommissionEarnedPayload is the stable per-entry notification schema.
type CommissionEarnedPayload struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Role        string `json:"role"`
	ClientID    string `json:"client_id"`
	PaymentID   string `json:"payment_id"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p CommissionEarnedPayload) ToMap() map[string]any {
	return map[string]any{
		"user_id":      p.UserID,
		"amount_cents": p.AmountCents,
		"role":         p.Role,
		"client_id":    p.ClientID,
		"payment_id":   p.PaymentID,
	}
}
