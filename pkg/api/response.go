package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/raildeck/raildeck/pkg/raildata"
)

func respondSuccess(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// respondError surfaces a failure as a stable machine readable code plus a
// human readable message. No error is ever presented as a successful empty
// result.
func respondError(c *fiber.Ctx, err error) error {
	code := raildata.ErrorCode(err)

	message := err.Error()
	var coded *raildata.Error
	if errors.As(err, &coded) {
		message = coded.Message
	}

	c.Status(statusForCode(code))
	return c.JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

func statusForCode(code string) int {
	switch code {
	case raildata.CodeParseError:
		return fiber.StatusBadRequest
	case raildata.CodeRateLimited:
		return fiber.StatusTooManyRequests
	case raildata.CodeCapabilityUnsupported:
		return fiber.StatusNotImplemented
	case raildata.CodeConfigurationMissing, raildata.CodeNoPrimarySource:
		return fiber.StatusServiceUnavailable
	case raildata.CodeTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusBadGateway
	}
}
