package domain

import "errors"

var (
	ErrPaymentNotFound   = errors.New("payment_not_found")
	ErrClientNotFound    = errors.New("client_not_found")
	ErrAlreadyCalculated = errors.New("commission_already_calculated")
	ErrInvalidSetting    = errors.New("invalid_commission_setting")
	// ErrLedgerWrite wraps any failure while persisting ledger entries. The
	// payment's processed flag must stay false when it is returned.
	ErrLedgerWrite = errors.New("ledger_write_failed")
)
