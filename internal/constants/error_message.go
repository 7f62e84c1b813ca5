package constants

import "net/http"

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeApplicationNotFound = "APPLICATION_NOT_FOUND"
	ErrCodeAuthConfiguration   = "AUTH_CONFIGURATION"
	ErrCodeAuthRequestFailed   = "AUTH_REQUEST_FAILED"
	ErrCodeGatewayError        = "GATEWAY_ERROR"
	ErrCodePersistenceError    = "PERSISTENCE_ERROR"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

const (
	ErrMsgValidationFailed    = "invalid request"
	ErrMsgApplicationNotFound = "application not found"
	ErrMsgAuthConfiguration   = "payment gateway credentials are not configured"
	ErrMsgAuthRequestFailed   = "could not authenticate with the payment gateway"
	ErrMsgGatewayError        = "payment gateway request failed"
	ErrMsgPersistenceError    = "could not save the payment update"
	ErrMsgInternalError       = "internal server error"
)

var errorMessages = map[string]string{
	ErrCodeValidationFailed:    ErrMsgValidationFailed,
	ErrCodeApplicationNotFound: ErrMsgApplicationNotFound,
	ErrCodeAuthConfiguration:   ErrMsgAuthConfiguration,
	ErrCodeAuthRequestFailed:   ErrMsgAuthRequestFailed,
	ErrCodeGatewayError:        ErrMsgGatewayError,
	ErrCodePersistenceError:    ErrMsgPersistenceError,
	ErrCodeInternalError:       ErrMsgInternalError,
}

var httpStatuses = map[string]int{
	ErrCodeValidationFailed:    http.StatusBadRequest,
	ErrCodeApplicationNotFound: http.StatusNotFound,
	ErrCodeAuthConfiguration:   http.StatusInternalServerError,
	ErrCodeAuthRequestFailed:   http.StatusBadGateway,
	ErrCodeGatewayError:        http.StatusBadGateway,
	ErrCodePersistenceError:    http.StatusInternalServerError,
	ErrCodeInternalError:       http.StatusInternalServerError,
}

func GetErrorMessage(code string) string {
	msg, exists := errorMessages[code]
	if !exists {
		return ""
	}
	return msg
}

func GetHTTPStatus(code string) int {
	status, exists := httpStatuses[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}
