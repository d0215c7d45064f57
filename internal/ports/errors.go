package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Loader Errors
	ErrSourceUnreadable   = errors.New("transaction source could not be read")
	ErrMalformedSource    = errors.New("transaction source is malformed")
	ErrInvalidTransaction = errors.New("invalid transaction record")

	// Quote Provider Errors
	ErrQuoteUnavailable     = errors.New("quote provider is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the quote provider")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("quote provider authentication failed (check API keys)")
	ErrUnknownTicker        = errors.New("ticker not listed by the quote provider")
	ErrCircuitOpen          = errors.New("quote circuit breaker is open")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
	ErrDeleteFailed = errors.New("database delete failed")
)
