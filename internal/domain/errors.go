package domain

import "errors"

// Error taxonomy shared by usecases and delivery. Wrap these with
// fmt.Errorf("...: %w", Err...) so handlers can map them with errors.Is.
var (
	// ErrNotFound covers absent users, products, cart lines and orders.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState covers empty-cart checkout and illegal transitions
	// of an already finalized order.
	ErrInvalidState = errors.New("invalid state")

	// ErrVerificationFailed is a signature mismatch. It is distinct from
	// transport failures and must never advance order status.
	ErrVerificationFailed = errors.New("payment signature verification failed")

	// ErrExternalService is a transport or API failure of the payment
	// gateway. Retriable; order state is left untouched.
	ErrExternalService = errors.New("external service failure")

	// ErrUnauthorized covers bad credentials and invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
