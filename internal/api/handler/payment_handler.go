package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prolink/credits-system/internal/api/metrics"
	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/ports"
)

// PaymentDispatcher is the interface the handler uses to enqueue
// asynchronous payment notifications.
type PaymentDispatcher interface {
	Enqueue(n ports.PaymentNotificationInput)
	EnqueueBatch(ns []ports.PaymentNotificationInput)
}

// PaymentHandler receives confirmed payment events from the payment
// collaborator and operator adjustments from the back office.
type PaymentHandler struct {
	credits    ports.CreditService
	dispatcher PaymentDispatcher
}

func NewPaymentHandler(credits ports.CreditService, dispatcher PaymentDispatcher) *PaymentHandler {
	return &PaymentHandler{credits: credits, dispatcher: dispatcher}
}

// Confirmed handles POST /v1/payments/confirmed — synchronously credits the
// purchased units. Replayed references are absorbed and reported as success.
//
// @Summary      Apply a confirmed unit purchase
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentNotificationRequest  true  "Confirmed payment"
// @Success      200   {object}  paymentAppliedResponse
// @Success      201   {object}  paymentAppliedResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/payments/confirmed [post]
func (h *PaymentHandler) Confirmed(c echo.Context) error {
	req, err := bindNotification(c)
	if err != nil {
		return err
	}

	balance, err := h.credits.PaymentConfirmed(c.Request().Context(), req.ProfessionalID, req.Units, req.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			// Webhook retry: the caller must treat this as success.
			metrics.PaymentsDuplicateTotal.Inc()
			return c.JSON(http.StatusOK, paymentAppliedResponse{ProfessionalID: req.ProfessionalID, Duplicate: true})
		}
		if errors.Is(err, domain.ErrInvalidEntry) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid payment"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	metrics.PaymentsProcessedTotal.WithLabelValues(string(ports.PaymentConfirmed)).Inc()
	return c.JSON(http.StatusCreated, paymentAppliedResponse{ProfessionalID: req.ProfessionalID, Balance: balance})
}

// Refunded handles POST /v1/payments/refunded — synchronously debits the
// refunded units.
//
// @Summary      Apply a confirmed refund
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentNotificationRequest  true  "Confirmed refund"
// @Success      201   {object}  paymentAppliedResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/payments/refunded [post]
func (h *PaymentHandler) Refunded(c echo.Context) error {
	req, err := bindNotification(c)
	if err != nil {
		return err
	}

	balance, err := h.credits.RefundConfirmed(c.Request().Context(), req.ProfessionalID, req.Units, req.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "refund exceeds current balance"})
		}
		if errors.Is(err, domain.ErrInvalidEntry) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid refund"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	metrics.PaymentsProcessedTotal.WithLabelValues(string(ports.RefundConfirmed)).Inc()
	return c.JSON(http.StatusCreated, paymentAppliedResponse{ProfessionalID: req.ProfessionalID, Balance: balance})
}

// Notify handles POST /v1/payments/notifications — enqueues a single
// notification for asynchronous intake, returns 202.
//
// @Summary      Ingest a payment notification asynchronously
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentNotificationRequest  true  "Payment notification"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/payments/notifications [post]
func (h *PaymentHandler) Notify(c echo.Context) error {
	req, err := bindNotification(c)
	if err != nil {
		return err
	}

	h.dispatcher.Enqueue(toNotificationInput(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "notification accepted"})
}

// NotifyBatch handles POST /v1/payments/notifications/batch — enqueues a
// batch of notifications, returns 202.
//
// @Summary      Ingest a batch of payment notifications
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []paymentNotificationRequest  true  "Array of payment notifications"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/payments/notifications/batch [post]
func (h *PaymentHandler) NotifyBatch(c echo.Context) error {
	var reqs []paymentNotificationRequest
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "batch cannot be empty"})
	}

	inputs := make([]ports.PaymentNotificationInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": fmt.Sprintf("notification[%d]: %s", i, err.Error()),
			})
		}
		inputs = append(inputs, toNotificationInput(&req))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "notifications accepted", Count: len(inputs)})
}

// Adjust handles POST /v1/credits/adjust — appends an operator correction
// entry.
//
// @Summary      Apply an operator balance adjustment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adjustmentRequest  true  "Adjustment"
// @Success      201   {object}  paymentAppliedResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/credits/adjust [post]
func (h *PaymentHandler) Adjust(c echo.Context) error {
	var req adjustmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	balance, err := h.credits.Adjust(c.Request().Context(), req.ProfessionalID, req.Delta, req.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "adjustment would make balance negative"})
		}
		if errors.Is(err, domain.ErrInvalidEntry) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid adjustment"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusCreated, paymentAppliedResponse{ProfessionalID: req.ProfessionalID, Balance: balance})
}

func bindNotification(c echo.Context) (*paymentNotificationRequest, error) {
	var req paymentNotificationRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return &req, nil
}

func toNotificationInput(r *paymentNotificationRequest) ports.PaymentNotificationInput {
	kind := ports.PaymentConfirmed
	if r.Kind == string(ports.RefundConfirmed) {
		kind = ports.RefundConfirmed
	}
	return ports.PaymentNotificationInput{
		Kind:           kind,
		ProfessionalID: r.ProfessionalID,
		Units:          r.Units,
		Reference:      r.Reference,
		ReceivedAt:     r.ConfirmedAt,
	}
}
