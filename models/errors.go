package models

import "github.com/pkg/errors"

var (
	// inventory
	ErrDuplicateKey      = errors.New("asset tag already exists")
	ErrNotFound          = errors.New("asset not found")
	ErrValidation        = errors.New("validation error")
	ErrPersistence       = errors.New("failed to persist inventory")
	ErrInvalidBackupFile = errors.New("invalid backup file")
	ErrNothingToExport   = errors.New("no assets to export")

	// access gate
	ErrInvalidFormat      = errors.New("invalid email format")
	ErrForbiddenDomain    = errors.New("email domain is not allowed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must have at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingField       = errors.New("required field is missing")
	ErrDuplicateUser      = errors.New("email already registered")
	ErrNoSession          = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
	ErrProviderDisabled   = errors.New("identity provider is not configured")

	// spreadsheet sync
	ErrNotConfigured         = errors.New("google sheets is not configured")
	ErrRemoteError           = errors.New("remote spreadsheet request failed")
	ErrInvalidSpreadsheetURL = errors.New("invalid spreadsheet url")

	// key-value store
	ErrKeyNotFound = errors.New("key not found")
)
