package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// CalculatePayment runs the waterfall for one payment. Safe to call twice;
// the second call reports already_processed.
func (s *Server) CalculatePayment(c *gin.Context) {
	paymentID, ok := paymentIDParam(c)
	if !ok {
		return
	}

	result, err := s.svc.ProcessPayment(c.Request.Context(), paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":         result.Outcome,
		"entries_written": result.EntriesWritten,
	})
}

// ListPaymentCommissions returns the ledger rows recorded for a payment.
func (s *Server) ListPaymentCommissions(c *gin.Context) {
	paymentID, ok := paymentIDParam(c)
	if !ok {
		return
	}

	entries, err := s.svc.EntriesForPayment(c.Request.Context(), paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// InvalidateSettings drops the cached rate settings so the next calculation
// reloads them from the store.
func (s *Server) InvalidateSettings(c *gin.Context) {
	s.settings.Invalidate()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunSweep triggers one sweep batch immediately.
func (s *Server) RunSweep(c *gin.Context) {
	processed, err := s.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

func paymentIDParam(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed == 0 {
		AbortWithError(c, newValidationError("id", "invalid_payment_id", "invalid payment id"))
		return 0, false
	}
	return snowflake.ID(parsed), true
}
