package subsync

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when the processor is missing required
	// configuration.
	ErrNotConfigured = errors.New("processor not configured")

	// ErrInvalidSignature is returned when webhook signature validation fails.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnresolvedUser is returned when a customer record carries no internal
	// user id in its metadata. Retrying cannot fix an untagged customer, so
	// events failing this way are acknowledged without being applied.
	ErrUnresolvedUser = errors.New("customer metadata missing internal user id")

	// ErrUserNotFound is returned when a user cannot be found in Stripe.
	ErrUserNotFound = errors.New("user not found in billing provider")

	// ErrTransientDependency wraps network or service failures talking to
	// Stripe or the store. Events failing this way are safe to redeliver.
	ErrTransientDependency = errors.New("transient dependency failure")

	// ErrSubscriptionNotFound is returned by stores when a user has no
	// subscription record.
	ErrSubscriptionNotFound = errors.New("subscription record not found")
)

// transient marks err as retryable by wrapping it in ErrTransientDependency.
func transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransientDependency, err)
}

// IsTransient reports whether err should surface as a server error so the
// provider redelivers the event.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientDependency)
}
