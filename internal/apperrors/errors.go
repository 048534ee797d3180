package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the user is not authorized for the requested resource.
var ErrForbidden = errors.New("access denied")

// ErrUnsupportedSite indicates a site identifier that matches neither a known
// site code nor a known display name. Always a client input error.
var ErrUnsupportedSite = errors.New("unsupported site")

// ErrNoSiteSelected indicates that a query was attempted without a site.
var ErrNoSiteSelected = errors.New("no site selected")

// ErrConnectionFailed indicates that a connection pool could not be established.
var ErrConnectionFailed = errors.New("database connection failed")

// ErrQueryFailed indicates that a bound statement failed on a healthy connection.
var ErrQueryFailed = errors.New("query failed")

// ErrChangeInFlight indicates that a site change was ignored because another
// change for the same workspace is still in progress.
var ErrChangeInFlight = errors.New("site change already in progress")

// ErrServerOnly indicates that database operations are not available in this
// process (the rejecting executor is installed).
var ErrServerOnly = errors.New("database operations are only available on the server")

// UnsupportedSiteError carries the rejected identifier.
type UnsupportedSiteError struct {
	Identifier string
}

func (e *UnsupportedSiteError) Error() string {
	return fmt.Sprintf("unsupported site: %s", e.Identifier)
}

func (e *UnsupportedSiteError) Is(target error) bool { return target == ErrUnsupportedSite }

// ConnectionFailedError carries the site whose pool could not be established.
type ConnectionFailedError struct {
	SiteID string
	Err    error
}

func (e *ConnectionFailedError) Error() string {
	return fmt.Sprintf("connection to site %s failed: %v", e.SiteID, e.Err)
}

func (e *ConnectionFailedError) Is(target error) bool { return target == ErrConnectionFailed }

func (e *ConnectionFailedError) Unwrap() error { return e.Err }

// QueryFailedError carries site context and a short statement digest for
// diagnostics. The digest never contains bound parameter values.
type QueryFailedError struct {
	SiteID string
	Digest string
	Err    error
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("query failed on site %s (%s): %v", e.SiteID, e.Digest, e.Err)
}

func (e *QueryFailedError) Is(target error) bool { return target == ErrQueryFailed }

func (e *QueryFailedError) Unwrap() error { return e.Err }
