package domain

import "time"

// Checkout saga step names, in execution order. Compensation runs in reverse
// order over the completed steps.
const (
	StepValidateCart  = "validate_cart"
	StepReservePromo  = "reserve_promo"
	StepReserveCredit = "reserve_credit"
	StepEnforceFloor  = "enforce_total_floor"
	StepCreatePayment = "create_payment_session"
	StepPersistOrder  = "persist_session"
)

// Saga step statuses.
const (
	StepStatusPending     = "pending"
	StepStatusCompleted   = "completed"
	StepStatusFailed      = "failed"
	StepStatusCompensated = "compensated"
)

// SagaStep records the outcome of one checkout step for logging and events.
type SagaStep struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// DiscountReservation tracks the promo and credit holds taken during a single
// checkout attempt. It lives only for the duration of the attempt: on success
// the holds are committed by the payment flow, on failure everything still
// uncommitted is released in reverse order.
type DiscountReservation struct {
	AttemptID string

	PromoID            string
	PromoCode          string
	PromoDiscountCents int64
	PromoReserved      bool

	CreditID            string
	CreditDiscountCents int64
	CreditReserved      bool

	Steps []SagaStep
}

// TotalDiscountCents is the combined promo and credit discount after the
// ceiling has been applied.
func (r DiscountReservation) TotalDiscountCents() int64 {
	return r.PromoDiscountCents + r.CreditDiscountCents
}

// RecordStep appends a step outcome.
func (r *DiscountReservation) RecordStep(name, status, errMsg string) {
	r.Steps = append(r.Steps, SagaStep{
		Name:       name,
		Status:     status,
		Error:      errMsg,
		FinishedAt: time.Now().UTC(),
	})
}
