package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body returned by handlers for failed requests.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// SendJSON writes data with the given status code.
func SendJSON(c *fiber.Ctx, status int, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(data)
}

// SendError writes a {"detail": message} body with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}
	return c.Status(status).JSON(ErrorResponse{Detail: message})
}

// ErrorHandler is the application-wide fiber error handler. Errors that reach
// it were not handled by a route, so the body uses the {"error": message} shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	} else if err != nil {
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
