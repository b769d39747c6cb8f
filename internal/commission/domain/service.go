package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Outcome summarizes what happened to one payment's calculation run.
type Outcome string

const (
	OutcomeCalculated       Outcome = "calculated"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeFlaggedForReview Outcome = "flagged_for_review"
)

// Result reports the outcome of processing a single payment.
type Result struct {
	Outcome        Outcome
	EntriesWritten int
}

// CommissionService runs the waterfall for payments and exposes the resulting
// ledger rows.
type CommissionService interface {
	// ProcessPayment calculates and persists commission entries for one
	// payment. Re-running on an already-processed payment is a no-op.
	ProcessPayment(ctx context.Context, paymentID snowflake.ID) (Result, error)

	// EntriesForPayment lists the ledger rows recorded for a payment.
	EntriesForPayment(ctx context.Context, paymentID snowflake.ID) ([]CommissionLedgerEntry, error)
}

// Service is the package alias for CommissionService.
type Service = CommissionService
