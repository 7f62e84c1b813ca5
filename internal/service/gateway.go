package service

import (
	"errors"

	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
)

// gatewayError classifies a pesapal client failure into a service error code.
func gatewayError(err error) error {
	switch {
	case errors.Is(err, pesapal.ErrAuthConfiguration):
		return NewServiceError(constants.ErrCodeAuthConfiguration, err)
	case errors.Is(err, pesapal.ErrAuthRequest):
		return NewServiceError(constants.ErrCodeAuthRequestFailed, err)
	case errors.Is(err, pesapal.ErrInvalidRequest):
		return NewServiceError(constants.ErrCodeValidationFailed, err)
	default:
		return NewServiceError(constants.ErrCodeGatewayError, err)
	}
}

func errorCode(err error) string {
	var serviceErr Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}
	return constants.ErrCodeInternalError
}
