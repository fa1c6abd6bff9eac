package smsprovider

import (
	"errors"
	"fmt"
)

const (
	ErrorCodeServerError   = "SERVER_ERROR"   // For 5xx HTTP status
	ErrorCodeTimeout       = "TIMEOUT"        // For context timeout
	ErrorCodeInvalidNumber = "INVALID_NUMBER" // For 400/validation errors
	ErrorCodeNetworkError  = "NETWORK_ERROR"  // For connection failures
	ErrorCodeUnauthorized  = "UNAUTHORIZED"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeNotSupported  = "NOT_SUPPORTED"
)

// Error is a gateway failure normalized to one of the codes above. Error()
// returns the normalized code; the gateway's own code is kept for logs.
type Error struct {
	Code string
	// ProviderCode is the Twilio error number or the AWS API error code.
	ProviderCode string
	Message      string
}

func NewError(code string) *Error {
	return &Error{Code: code}
}

func (e *Error) Error() string {
	return e.Code
}

func (e *Error) Detail() string {
	if e.ProviderCode == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.ProviderCode, e.Message)
}

// CodeOf returns the normalized code of err, or "" when err did not come from a provider.
func CodeOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// twilioError is the JSON body Twilio returns with 4xx/5xx responses.
type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// snsErrorCodes maps AWS API error codes onto the normalized codes.
var snsErrorCodes = map[string]string{
	"InvalidParameter":            ErrorCodeInvalidNumber,
	"InvalidParameterValue":       ErrorCodeInvalidNumber,
	"AuthorizationError":          ErrorCodeUnauthorized,
	"InvalidClientTokenId":        ErrorCodeUnauthorized,
	"NotFound":                    ErrorCodeNotFound,
	"OptedOut":                    ErrorCodeInvalidNumber,
	"Throttled":                   ErrorCodeServerError,
	"InternalError":               ErrorCodeServerError,
	"KMSThrottling":               ErrorCodeServerError,
	"EndpointDisabled":            ErrorCodeInvalidNumber,
	"PlatformApplicationDisabled": ErrorCodeNotSupported,
}

type apiError interface {
	ErrorCode() string
	ErrorMessage() string
}

func snsError(err error) error {
	var ae apiError
	if !errors.As(err, &ae) {
		return transportError(err)
	}

	code, ok := snsErrorCodes[ae.ErrorCode()]
	if !ok {
		code = ErrorCodeServerError
	}
	return &Error{Code: code, ProviderCode: ae.ErrorCode(), Message: ae.ErrorMessage()}
}
