package domain

import "time"

// SendRequest is one outbound message instruction.
type SendRequest struct {
	// RecipientPhone is the raw user-entered number; it is normalized
	// before dispatch and must not be blank.
	RecipientPhone string `json:"recipient_phone"`

	// MessageBody must not be blank. Length limits are enforced by the
	// caller, not here.
	MessageBody string `json:"message_body"`

	// SimID references a previously detected or default SimDescriptor.
	SimID int `json:"sim_id"`

	// CustomerID is an optional correlation ID, used only for audit logging.
	CustomerID string `json:"customer_id,omitempty"`

	// TemplateID identifies the message template used, if any.
	TemplateID string `json:"template_id,omitempty"`
}

// SendResult is the outcome of one SendRequest. Exactly one of
// {Success with empty ErrorMessage, failure with non-empty ErrorMessage}
// holds; construct results through NewSendSuccess / NewSendFailure.
type SendResult struct {
	Success         bool      `json:"success"`
	NormalizedPhone string    `json:"normalized_phone,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// NewSendSuccess builds a successful SendResult stamped with the current time.
func NewSendSuccess(normalizedPhone string) SendResult {
	return SendResult{
		Success:         true,
		NormalizedPhone: normalizedPhone,
		Timestamp:       time.Now().UTC(),
	}
}

// NewSendFailure builds a failed SendResult carrying the error text.
func NewSendFailure(normalizedPhone string, err error) SendResult {
	msg := "send failed"
	if err != nil {
		msg = err.Error()
	}
	return SendResult{
		Success:         false,
		NormalizedPhone: normalizedPhone,
		Timestamp:       time.Now().UTC(),
		ErrorMessage:    msg,
	}
}
