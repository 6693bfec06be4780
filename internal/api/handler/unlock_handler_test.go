package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

type stubUnlockService struct {
	spendFn func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error)
	hasFn   func(ctx context.Context, professionalID, clientID string) (bool, error)
}

func (s *stubUnlockService) TrySpendAndUnlock(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
	return s.spendFn(ctx, input)
}

func (s *stubUnlockService) HasUnlock(ctx context.Context, professionalID, clientID string) (bool, error) {
	return s.hasFn(ctx, professionalID, clientID)
}

func newUnlockContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/unlocks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", domain.RoleProfessional)
	c.Set("account_id", "pro_1")
	return c, rec
}

func TestUnlockHandler_Spend_Granted(t *testing.T) {
	granted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	stub := &stubUnlockService{
		spendFn: func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
			if input.ProfessionalID != "pro_1" || input.ClientID != "client_9" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if input.Caller.Role != domain.RoleProfessional {
				t.Fatalf("unexpected caller role: %s", input.Caller.Role)
			}
			return &ports.UnlockResult{RemainingBalance: 4, GrantedAt: granted}, nil
		},
	}
	c, rec := newUnlockContext(t, `{"client_id":"client_9"}`)

	if err := NewUnlockHandler(stub).Spend(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp unlockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AlreadyUnlocked {
		t.Fatal("expected fresh grant")
	}
	if resp.RemainingBalance != 4 {
		t.Fatalf("expected remaining 4, got %d", resp.RemainingBalance)
	}
	if resp.GrantedAt != "2026-03-01T10:00:00Z" {
		t.Fatalf("unexpected granted_at: %s", resp.GrantedAt)
	}
}

func TestUnlockHandler_Spend_AlreadyUnlocked(t *testing.T) {
	stub := &stubUnlockService{
		spendFn: func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
			return &ports.UnlockResult{AlreadyUnlocked: true, RemainingBalance: 7, GrantedAt: time.Now()}, nil
		},
	}
	c, rec := newUnlockContext(t, `{"client_id":"client_9"}`)

	if err := NewUnlockHandler(stub).Spend(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp unlockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.AlreadyUnlocked {
		t.Fatal("expected already_unlocked")
	}
	if resp.RemainingBalance != 7 {
		t.Fatalf("expected remaining 7, got %d", resp.RemainingBalance)
	}
}

func TestUnlockHandler_Spend_InsufficientBalance(t *testing.T) {
	stub := &stubUnlockService{
		spendFn: func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
			return nil, domain.ErrInsufficientBalance
		},
	}
	c, rec := newUnlockContext(t, `{"client_id":"client_9"}`)

	_ = NewUnlockHandler(stub).Spend(c)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestUnlockHandler_Spend_Forbidden(t *testing.T) {
	stub := &stubUnlockService{
		spendFn: func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
			return nil, domain.ErrForbidden
		},
	}
	c, rec := newUnlockContext(t, `{"client_id":"client_9"}`)

	_ = NewUnlockHandler(stub).Spend(c)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestUnlockHandler_Spend_MissingClientID(t *testing.T) {
	stub := &stubUnlockService{
		spendFn: func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	c, rec := newUnlockContext(t, `{}`)

	_ = NewUnlockHandler(stub).Spend(c)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestUnlockHandler_Spend_MissingClaims(t *testing.T) {
	stub := &stubUnlockService{
		spendFn: func(ctx context.Context, input ports.SpendUnlockInput) (*ports.UnlockResult, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/unlocks", strings.NewReader(`{"client_id":"client_9"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewUnlockHandler(stub).Spend(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestUnlockHandler_Status(t *testing.T) {
	stub := &stubUnlockService{
		hasFn: func(ctx context.Context, professionalID, clientID string) (bool, error) {
			if professionalID != "pro_1" || clientID != "client_9" {
				t.Fatalf("unexpected args: %s %s", professionalID, clientID)
			}
			return true, nil
		},
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/unlocks/client_9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("client_id")
	c.SetParamValues("client_9")
	c.Set("role", domain.RoleProfessional)
	c.Set("account_id", "pro_1")

	if err := NewUnlockHandler(stub).Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp unlockStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Unlocked || resp.ClientID != "client_9" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
