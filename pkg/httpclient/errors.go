package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/errors"
)

// DownstreamErrorResponse mirrors the error body shape returned by HTTP
// services using the standard response envelope.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate error. Structured error bodies keep their code and
// message; anything else becomes a generic error with the status and raw
// body. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil && downstream.Error != nil {
		return mapDownstreamError(resp.StatusCode, downstream.Error.Code, downstream.Error.Message, serviceName)
	}

	// Unstructured 5xx bodies still signal a transient downstream failure.
	if resp.StatusCode >= 500 {
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s returned status %d", serviceName, resp.StatusCode))
	}

	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
}

// mapDownstreamError translates a downstream service's HTTP status and error
// code into an AppError preserving the error semantics.
func mapDownstreamError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrInvalidInput}
	case status == http.StatusConflict:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrConflict}
	case status == http.StatusTooManyRequests:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrRateLimited}
	case status >= 500:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	default:
		return fmt.Errorf("%s returned status %d: %s", serviceName, status, message)
	}
}
