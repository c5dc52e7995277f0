package dto

import "time"

// ErrorResponse is the JSON envelope of every API error.
type ErrorResponse struct {
	Message      string    `json:"message" example:"stock not found"`
	ErrorDetails string    `json:"error,omitempty" example:"ticker 9999 is not tracked"`
	Timestamp    time.Time `json:"timestamp" example:"2024-01-05T10:30:00Z"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse; err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
