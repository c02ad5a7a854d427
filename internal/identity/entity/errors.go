package entity

import "errors"

var (
	// ErrInvalidCredentials covers unknown email, inactive user and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoActiveChallenge is returned when no unconsumed, unexpired code exists.
	ErrNoActiveChallenge = errors.New("no active challenge")

	ErrCodeMismatch = errors.New("code mismatch")

	// ErrAlreadyConsumed is returned when a concurrent verification consumed the code first.
	ErrAlreadyConsumed = errors.New("code already consumed")

	// ErrDeliveryFailure is returned when the code was stored but could not be sent.
	ErrDeliveryFailure = errors.New("code delivery failed")
)
