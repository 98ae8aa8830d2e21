package services

import (
	"errors"

	"carmarket-backend/internal/repository"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrAlertNotFound      = errors.New("alert not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrSessionClosed      = errors.New("chat session is closed")
	ErrImageNotFound      = errors.New("image not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyImages      = errors.New("too many images in one request")
)

// notFound maps repository lookups that found nothing onto the service
// sentinel. Malformed ids are treated the same as unknown ones.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return sentinel
	}
	return err
}
