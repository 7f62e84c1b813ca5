package constants_test

import (
	"net/http"
	"testing"

	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := map[string]int{
		constants.ErrCodeValidationFailed:    http.StatusBadRequest,
		constants.ErrCodeApplicationNotFound: http.StatusNotFound,
		constants.ErrCodeAuthConfiguration:   http.StatusInternalServerError,
		constants.ErrCodeAuthRequestFailed:   http.StatusBadGateway,
		constants.ErrCodeGatewayError:        http.StatusBadGateway,
		constants.ErrCodePersistenceError:    http.StatusInternalServerError,
		"SOMETHING_ELSE":                     http.StatusInternalServerError,
	}

	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, want, constants.GetHTTPStatus(code))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, constants.ErrMsgApplicationNotFound, constants.GetErrorMessage(constants.ErrCodeApplicationNotFound))
	assert.Empty(t, constants.GetErrorMessage("UNKNOWN"))
}
