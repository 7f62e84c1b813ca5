package errors

import (
	"errors"

	"github.com/Xebarter/Clevers-Website-sub000/internal/api/contract"
	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// causeVisible lists the codes whose cause is returned to the caller. Storage
// and internal failures only expose the generic message.
var causeVisible = map[string]bool{
	constants.ErrCodeValidationFailed:  true,
	constants.ErrCodeAuthConfiguration: true,
	constants.ErrCodeAuthRequestFailed: true,
	constants.ErrCodeGatewayError:      true,
}

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(contract.ResponseError{
				Error: fiberErr.Message,
				Code:  fiberErr.Code,
			})
		}

		logger.Error("Unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(contract.ResponseError{
			Error: constants.GetErrorMessage(constants.ErrCodeInternalError),
			Code:  constants.ErrCodeInternalError,
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	body := contract.ResponseError{
		Error: constants.GetErrorMessage(err.Code),
		Code:  err.Code,
	}

	if causeVisible[err.Code] && err.Cause != nil {
		body.Details = err.Cause.Error()
	}

	return c.Status(constants.GetHTTPStatus(err.Code)).JSON(body)
}
