package constants

const MessageErrorFormat = "The '%s' field is invalid"

const (
	ErrCodeDeviceNotFound     = "DEVICE_NOT_FOUND"
	ErrCodeInvalidNumber      = "INVALID_NUMBER"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeDatabase           = "DATABASE_ERROR"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeInvalidRequestBody = "INVALID_REQUEST_BODY"
)

const (
	ErrMsgDeviceNotFound     = "device not found"
	ErrMsgInvalidNumber      = "invalid phone number"
	ErrMsgUnauthorized       = "authentication credentials were not provided or are invalid"
	ErrMsgValidationFailed   = "validation failed"
	ErrMsgDatabase           = "database error"
	ErrMsgInternalError      = "Internal server error"
	ErrMsgInvalidRequestBody = "failed to parse request body"
)

var errorMessages = map[string]string{
	ErrCodeDeviceNotFound:     ErrMsgDeviceNotFound,
	ErrCodeInvalidNumber:      ErrMsgInvalidNumber,
	ErrCodeUnauthorized:       ErrMsgUnauthorized,
	ErrCodeValidationFailed:   ErrMsgValidationFailed,
	ErrCodeDatabase:           ErrMsgDatabase,
	ErrCodeConfiguration:      ErrMsgInternalError,
	ErrCodeInternalError:      ErrMsgInternalError,
	ErrCodeInvalidRequestBody: ErrMsgInvalidRequestBody,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidRequestBody, ErrCodeValidationFailed, ErrCodeInvalidNumber:
		return 400
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeDeviceNotFound:
		return 404
	case ErrCodeDatabase, ErrCodeConfiguration, ErrCodeInternalError:
		return 500
	default:
		return 500
	}
}
