package status

import "errors"

var (
	// ErrMissingStep means a workflow view was reached without its
	// predecessor's output. Handlers redirect home instead of erroring.
	ErrMissingStep = errors.New("workflow: required step state missing")

	ErrSoldOut        = errors.New("booking: event is sold out")
	ErrEventCancelled = errors.New("booking: event is cancelled")
	ErrSubmitInFlight = errors.New("booking: a submit is already in flight")

	ErrNotPaying      = errors.New("payment: no payment in progress")
	ErrPaymentFailed  = errors.New("payment: payment failed")
	ErrPollExhausted  = errors.New("payment: status polling abandoned after repeated errors")
	ErrInvalidTicket  = errors.New("ticket: malformed scan payload")
	ErrUnauthorized   = errors.New("session: not authenticated")
	ErrForbidden      = errors.New("session: admin role required")
	ErrSessionExpired = errors.New("session: token expired")
)
