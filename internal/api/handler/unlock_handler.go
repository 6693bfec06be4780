package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prolink/credits-system/internal/api/metrics"
	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

// UnlockHandler handles HTTP requests for contact unlocks.
type UnlockHandler struct {
	service ports.UnlockService
}

func NewUnlockHandler(service ports.UnlockService) *UnlockHandler {
	return &UnlockHandler{service: service}
}

type unlockRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}

type unlockResponse struct {
	ClientID         string `json:"client_id"`
	AlreadyUnlocked  bool   `json:"already_unlocked"`
	RemainingBalance int64  `json:"remaining_balance"`
	GrantedAt        string `json:"granted_at"`
}

type unlockStatusResponse struct {
	ClientID string `json:"client_id"`
	Unlocked bool   `json:"unlocked"`
}

// Spend handles POST /v1/unlocks — spends one unit to unlock a client's
// contact details, or confirms an existing unlock.
//
// @Summary      Unlock a client's contact details
// @Tags         unlocks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      unlockRequest  true  "Client to unlock"
// @Success      200   {object}  unlockResponse
// @Failure      400   {object}  map[string]string
// @Failure      402   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/unlocks [post]
func (h *UnlockHandler) Spend(c echo.Context) error {
	var req unlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	role, accountID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := h.service.TrySpendAndUnlock(c.Request().Context(), ports.SpendUnlockInput{
		Caller:         ports.Caller{Role: role, AccountID: accountID},
		ProfessionalID: accountID,
		ClientID:       req.ClientID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			observeUnlock("insufficient_balance", start)
			return c.JSON(http.StatusPaymentRequired, map[string]string{"error": "insufficient unit balance"})
		}
		if errors.Is(err, domain.ErrForbidden) {
			observeUnlock("forbidden", start)
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	outcome := "granted"
	if result.AlreadyUnlocked {
		outcome = "already_unlocked"
	}
	observeUnlock(outcome, start)

	return c.JSON(http.StatusOK, unlockResponse{
		ClientID:         req.ClientID,
		AlreadyUnlocked:  result.AlreadyUnlocked,
		RemainingBalance: result.RemainingBalance,
		GrantedAt:        result.GrantedAt.UTC().Format(time.RFC3339),
	})
}

// Status handles GET /v1/unlocks/:client_id — reports whether the calling
// professional has unlocked the client.
//
// @Summary      Check unlock status for a client
// @Tags         unlocks
// @Produce      json
// @Security     BearerAuth
// @Param        client_id  path      string  true  "Client id"
// @Success      200        {object}  unlockStatusResponse
// @Failure      401        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /v1/unlocks/{client_id} [get]
func (h *UnlockHandler) Status(c echo.Context) error {
	_, accountID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	clientID := c.Param("client_id")
	unlocked, err := h.service.HasUnlock(c.Request().Context(), accountID, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, unlockStatusResponse{ClientID: clientID, Unlocked: unlocked})
}

func observeUnlock(result string, start time.Time) {
	metrics.UnlocksTotal.WithLabelValues(result).Inc()
	metrics.UnlockDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
