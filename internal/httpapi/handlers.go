package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fuel-receipts/internal/logging"
	"fuel-receipts/internal/receipts"
	"fuel-receipts/internal/service"
)

const (
	msgInvalidJSON = "Invalid JSON payload"
	msgInternal    = "Internal server error"
)

// Generator produces a financial year of receipts.
type Generator interface {
	GenerateYearly(ctx context.Context, req service.GenerateRequest) (*service.YearlyReport, error)
}

var _ Generator = (*service.Service)(nil)

type handlers struct {
	generator Generator
	logger    zerolog.Logger
	now       func() time.Time
}

func errorBody(msg string) gin.H { return gin.H{"error": msg} }

// generateYearly handles POST /api/generate-yearly-receipts.
func (h *handlers) generateYearly(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidJSON))
		return
	}

	report, err := h.generator.GenerateYearly(c.Request.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, errorBody(verr.Message))
			return
		}
		logger := logging.FromContext(c.Request.Context(), h.logger)
		logger.Error().Err(err).Msg("yearly generation failed")
		c.JSON(http.StatusInternalServerError, errorBody(msgInternal))
		return
	}

	c.JSON(http.StatusOK, report)
}

// echoReceipt handles POST /api/generate-receipt: the payload is returned as
// sent, with date filled in when absent or empty.
func (h *handlers) echoReceipt(c *gin.Context) {
	payload := map[string]any{}
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorBody(msgInvalidJSON))
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}

	if isBlank(payload["date"]) {
		payload["date"] = h.now().Format(receipts.TimestampLayout)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *handlers) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case json.Number:
		return val == "0"
	default:
		return false
	}
}
