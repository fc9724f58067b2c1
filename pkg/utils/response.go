package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
)

// Response holds the standardized API response fields.
type Response struct {
	Success bool         `json:"status"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *CustomError `json:"error,omitempty"`
}

// ResponseBuilder builds a response with a fluent interface.
type ResponseBuilder struct {
	Ctx     context.Context
	C       *fiber.Ctx
	Status  int
	Ok      bool
	Message string
	Data    interface{}
	Err     *CustomError
}

// Success starts a success response.
func Success(c *fiber.Ctx) *ResponseBuilder {
	return &ResponseBuilder{
		Ctx:    c.UserContext(),
		C:      c,
		Ok:     true,
		Status: fiber.StatusOK,
	}
}

// Error starts an error response from a CustomError.
func Error(c *fiber.Ctx, err *CustomError) *ResponseBuilder {
	return &ResponseBuilder{
		Ctx:    c.UserContext(),
		C:      c,
		Ok:     false,
		Status: err.Code,
		Err:    err,
	}
}

// WithStatus overrides the HTTP status (e.g. 201 on creation).
func (b *ResponseBuilder) WithStatus(status int) *ResponseBuilder {
	b.Status = status
	return b
}

// WithMessage adds a custom message to the response.
func (b *ResponseBuilder) WithMessage(msg string) *ResponseBuilder {
	b.Message = msg
	return b
}

// WithData adds data to the response.
func (b *ResponseBuilder) WithData(data interface{}) *ResponseBuilder {
	b.Data = data
	return b
}

// Send sends the response and logs it.
func (b *ResponseBuilder) Send() error {
	resp := Response{
		Success: b.Ok,
		Message: b.Message,
		Data:    b.Data,
		Error:   b.Err,
	}

	if log, ok := b.C.Locals("logger").(*logger.Logger); ok {
		meta := Map{
			"status":  fmt.Sprintf("%d", b.Status),
			"path":    b.C.Path(),
			"method":  b.C.Method(),
			"latency": time.Since(b.C.Context().Time()).String(),
		}
		if b.Ok {
			log.Info(b.Ctx).WithMeta(meta).Logs("Response sent")
		} else {
			log.Warn(b.Ctx).WithMeta(meta).Logs(fmt.Sprintf("Error response sent: %s", b.Err.Error()))
		}
	}

	return b.C.Status(b.Status).JSON(resp)
}

// SendError is a convenience function to send any error as a response.
func SendError(c *fiber.Ctx, err error) error {
	appErr, ok := AsCustomError(err)
	if !ok {
		// Copy the sentinel so its details are request-scoped.
		appErr = NewError(ErrInternalServerError.Code, ErrInternalServerError.Message, err.Error())
	}
	return Error(c, appErr).Send()
}

// SendSuccess is a convenience function to send a success response directly.
func SendSuccess(c *fiber.Ctx, data interface{}) error {
	return Success(c).WithData(data).Send()
}
