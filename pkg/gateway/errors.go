package gateway

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// throttlingCodes are the API error codes retried with backoff. The list
// mirrors what Storage Gateway actually returns under load: throttling
// proper plus the transient server-side failures.
var throttlingCodes = map[string]struct{}{
	"ThrottlingException":         {},
	"RequestLimitExceeded":        {},
	"TooManyRequestsException":    {},
	"InternalServerError":         {},
	"ServiceUnavailableException": {},
}

// permissionCodes are terminal: retrying cannot help, the run must stop.
var permissionCodes = map[string]struct{}{
	"AccessDeniedException":       {},
	"UnauthorizedOperation":       {},
	"InvalidAccessKeyId":          {},
	"UnrecognizedClientException": {},
}

// notFoundCodes identify a missing tape or gateway.
var notFoundCodes = map[string]struct{}{
	"ResourceNotFoundException": {},
}

func apiErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

// IsThrottling reports whether err is a throttling or transient
// server-side error worth retrying.
func IsThrottling(err error) bool {
	_, ok := throttlingCodes[apiErrorCode(err)]
	return ok
}

// IsPermission reports whether err is a credential or authorization
// failure. These abort the whole workflow immediately.
func IsPermission(err error) bool {
	_, ok := permissionCodes[apiErrorCode(err)]
	return ok
}

// IsNotFound reports whether err indicates a missing resource, either as
// a typed NotFoundError or as the service's not-found code.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	_, ok := notFoundCodes[apiErrorCode(err)]
	return ok
}

// ThrottledError is returned when the retry budget is exhausted and the
// last error was still a throttling-class failure.
type ThrottledError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s throttled after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ThrottledError) Unwrap() error { return e.Err }

// NotFoundError marks a tape or gateway that could not be located. It is
// recorded per item and never aborts the surrounding batch.
type NotFoundError struct {
	Resource string // "tape" or "gateway"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// PermissionError wraps an authorization failure with the IAM actions the
// tool needs, so the operator knows what to fix.
type PermissionError struct {
	Operation string
	Err       error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("access denied during %s: %v (required IAM actions: storagegateway:ListGateways, "+
		"storagegateway:ListTapes, storagegateway:DescribeTapes, storagegateway:DeleteTape, "+
		"storagegateway:DeleteTapeArchive)", e.Operation, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// IsPermissionError reports whether err is (or wraps) a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// Classify wraps a terminal API error into the matching taxonomy type.
// Throttling errors are not classified here; the retrying client owns
// those.
func Classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsPermission(err) {
		return &PermissionError{Operation: operation, Err: err}
	}
	return err
}
