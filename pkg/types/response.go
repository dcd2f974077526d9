package types

import "github.com/homegoods-vn/homegoods-backend/pkg/pagination"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListEnvelope wraps paginated listings with their page descriptor.
type ListEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Page `json:"meta"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
