package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prolink/credits-system/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty (presence proves the middleware ran).
//   - professional and client roles require a non-empty account_id; without
//     it the JWT is structurally valid but operationally unusable — reject
//     with 401.
func ctxClaims(c echo.Context) (role, accountID string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	accountID, _ = c.Get("account_id").(string)
	if (role == domain.RoleProfessional || role == domain.RoleClient) && accountID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing account identity")
	}

	return role, accountID, nil
}
