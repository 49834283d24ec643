package domain

import (
	"fmt"

	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
)

// Cart validation failures. Surfaced verbatim to the caller.

func ErrCartEmpty() *apperrors.AppError {
	return apperrors.InvalidInput("cart is empty")
}

func ErrCartTooLarge(maxLines int) *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("cart exceeds the maximum of %d lines", maxLines))
}

func ErrItemNotFound(itemID string) *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("item %s is no longer on the menu", itemID))
}

func ErrInvalidSelections(itemID string) *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("item %s has invalid modifier selections", itemID))
}

func ErrSubtotalOutOfBounds(minCents, maxCents int64) *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("order total must be between %d and %d cents", minCents, maxCents))
}

// Promo rejections. A different code might work, so these are 422, not 4xx
// terminal.

func ErrPromoNotFound() *apperrors.AppError {
	return apperrors.Unprocessable("PROMO_NOT_FOUND", "Promo code not found")
}

func ErrPromoInactive() *apperrors.AppError {
	return apperrors.Unprocessable("PROMO_INACTIVE", "Promo code is no longer active")
}

func ErrPromoExpired() *apperrors.AppError {
	return apperrors.Unprocessable("PROMO_EXPIRED", "Promo code has expired")
}

func ErrPromoMinOrder(minCents int64) *apperrors.AppError {
	return apperrors.Unprocessable("PROMO_MIN_ORDER",
		fmt.Sprintf("Order must be at least $%.2f to use this promo code", float64(minCents)/100))
}

func ErrPromoPerUserLimit() *apperrors.AppError {
	return apperrors.Unprocessable("PROMO_PER_USER_LIMIT", "You have already used this promo code")
}

func ErrPromoExhausted() *apperrors.AppError {
	return apperrors.Unprocessable("PROMO_EXHAUSTED", "Promo code has reached its usage limit")
}

// Stored credit rejections.

func ErrCreditNotFound() *apperrors.AppError {
	return apperrors.Unprocessable("CREDIT_NOT_FOUND", "Credit not found")
}

func ErrCreditNotOwned() *apperrors.AppError {
	return apperrors.Forbidden("credit does not belong to this account")
}

func ErrCreditAlreadyConsumed() *apperrors.AppError {
	return apperrors.Conflict("CREDIT_ALREADY_CONSUMED", "Credit has already been used")
}

func ErrCreditExpired() *apperrors.AppError {
	return apperrors.Unprocessable("CREDIT_EXPIRED", "Credit has expired")
}

// Orchestrator rejections.

// ErrZeroPayableTotal rejects orders whose grand total is not positive after
// discounts. The payment provider cannot take a zero or negative charge.
func ErrZeroPayableTotal() *apperrors.AppError {
	return apperrors.Unprocessable("ZERO_PAYABLE_TOTAL", "discounts reduce the order to a non-payable total")
}

func ErrSessionNotFound(id string) *apperrors.AppError {
	return apperrors.NotFound("checkout session", id)
}

func ErrSessionNotOpen(id string) *apperrors.AppError {
	return apperrors.Gone(fmt.Sprintf("checkout session %s is no longer open", id))
}
