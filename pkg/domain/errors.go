package domain

import "errors"

var (
	// ErrClientNotFound is returned when a client does not exist or belongs
	// to a different user.
	ErrClientNotFound = errors.New("client not found")

	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrBusinessInfoNotFound is returned when a user has no business profile.
	ErrBusinessInfoNotFound = errors.New("business info not found")

	// ErrSettingsNotFound is returned when a user has no settings record.
	ErrSettingsNotFound = errors.New("notification settings not found")

	// ErrInvalidChannel is returned for an unknown communication method.
	ErrInvalidChannel = errors.New("invalid communication method")

	// ErrQuotaExceeded is returned when a send would exceed the monthly
	// channel quota for the user's plan.
	ErrQuotaExceeded = errors.New("monthly send quota exceeded")

	// ErrNoContact is returned when a send is requested for a recipient
	// with no usable address for the chosen channel.
	ErrNoContact = errors.New("no contact on file for channel")
)
