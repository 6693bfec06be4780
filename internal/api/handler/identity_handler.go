package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

// IdentityHandler serves the redacted identity views consumed by the
// messaging and profile surfaces.
type IdentityHandler struct {
	service ports.DisclosureService
}

func NewIdentityHandler(service ports.DisclosureService) *IdentityHandler {
	return &IdentityHandler{service: service}
}

// View handles GET /v1/identities/:user_id — returns the subject's identity
// redacted for the calling viewer.
//
// @Summary      View an identity, redacted per disclosure policy
// @Tags         identities
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "Subject user id"
// @Success      200      {object}  domain.DisclosureView
// @Failure      401      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /v1/identities/{user_id} [get]
func (h *IdentityHandler) View(c echo.Context) error {
	role, accountID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	view, err := h.service.ViewIdentity(c.Request().Context(), ports.Caller{Role: role, AccountID: accountID}, c.Param("user_id"))
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "identity not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, view)
}
