package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prolink/credits-system/internal/core/ports"
)

// CreditsHandler exposes the read-only balance and payment-history
// projections to the calling professional.
type CreditsHandler struct {
	service ports.BalanceService
}

func NewCreditsHandler(service ports.BalanceService) *CreditsHandler {
	return &CreditsHandler{service: service}
}

type balanceResponse struct {
	ProfessionalID string `json:"professional_id"`
	Balance        int64  `json:"balance"`
}

type historyItemResponse struct {
	EntryID        string `json:"entry_id"`
	Delta          int64  `json:"delta"`
	Reason         string `json:"reason"`
	Reference      string `json:"reference,omitempty"`
	CreatedAt      string `json:"created_at"`
	RunningBalance int64  `json:"running_balance"`
}

type historyResponse struct {
	ProfessionalID string                `json:"professional_id"`
	Items          []historyItemResponse `json:"items"`
}

// Balance handles GET /v1/credits/balance.
//
// @Summary      Current unit balance
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/credits/balance [get]
func (h *CreditsHandler) Balance(c echo.Context) error {
	_, accountID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	balance, err := h.service.BalanceOf(c.Request().Context(), accountID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, balanceResponse{ProfessionalID: accountID, Balance: balance})
}

// History handles GET /v1/credits/history.
//
// @Summary      Unit purchase and spend history
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  historyResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/credits/history [get]
func (h *CreditsHandler) History(c echo.Context) error {
	_, accountID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	items, err := h.service.History(c.Request().Context(), accountID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	out := make([]historyItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, historyItemResponse{
			EntryID:        item.EntryID,
			Delta:          item.Delta,
			Reason:         item.Reason,
			Reference:      item.Reference,
			CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
			RunningBalance: item.RunningBalance,
		})
	}

	return c.JSON(http.StatusOK, historyResponse{ProfessionalID: accountID, Items: out})
}
