package utils

import "time"

// Application Constants
const (
	AppName    = "DropCars"
	AppVersion = "1.0.0"

	DefaultCurrency = "INR"

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour
	PasswordMinLength = 8
	CredentialTTL     = 30 * 24 * time.Hour

	// Assignment
	// Window an accepted order stays resourceable before it lapses.
	AssignmentAcceptTTL = 30 * time.Minute
	// Fixed platform commission debited from the owner wallet on trip
	// completion.
	PlatformCommission = 50.0

	// Wallet
	MinTopupAmount = 100.0
	MaxTopupAmount = 100000.0

	// Evidence uploads
	MaxEvidenceSize = 5 * 1024 * 1024 // 5MB
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrInvalidToken       = "invalid token"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrValidationFailed   = "validation failed"
)

// Cache Keys
const (
	CacheCredentialPrefix    = "cred:"
	CacheWalletBalancePrefix = "wallet_balance:"
)
