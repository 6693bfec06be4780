package handler

import "time"

type paymentNotificationRequest struct {
	ProfessionalID string    `json:"professional_id" validate:"required"`
	Units          int64     `json:"units"           validate:"required,gt=0"`
	Reference      string    `json:"reference"       validate:"required"`
	Kind           string    `json:"kind"            validate:"omitempty,oneof=confirmed refunded"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

type paymentAppliedResponse struct {
	ProfessionalID string `json:"professional_id"`
	Balance        int64  `json:"balance"`
	Duplicate      bool   `json:"duplicate,omitempty"`
}

type adjustmentRequest struct {
	ProfessionalID string `json:"professional_id" validate:"required"`
	Delta          int64  `json:"delta"           validate:"required"`
	Reference      string `json:"reference"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}
