package handlers

import (
	"errors"
	"log"
	"net/http"

	"claims_crm_go/services"

	"github.com/labstack/echo/v4"
)

// Response is the envelope of every JSON response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const defaultSuccessMessage = "Operation completed successfully"

func success(c echo.Context, data interface{}, message string) error {
	return respond(c, http.StatusOK, data, message)
}

func created(c echo.Context, data interface{}, message string) error {
	return respond(c, http.StatusCreated, data, message)
}

func respond(c echo.Context, status int, data interface{}, message string) error {
	if message == "" {
		message = defaultSuccessMessage
	}
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// StatusForKind maps a service error kind to an HTTP status
func StatusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler renders every error as the JSON envelope. Service errors
// keep their caller-safe message; anything unclassified becomes a generic
// server error and is logged.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Server error"

	var se *services.ServiceError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &se):
		status = StatusForKind(se.Kind)
		message = se.Message
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(he.Code)
		}
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, Response{Success: false, Message: message})
	}
	if writeErr != nil {
		log.Printf("[ERROR] failed to write error response: %v", writeErr)
	}
}
