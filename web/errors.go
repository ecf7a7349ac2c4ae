// ABOUTME: Error rendering and request decoding helpers
// ABOUTME: Maps domain errors to status codes and hides storage details from clients
package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := s.classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, errorResponse{Error: message})
	}
	if writeErr != nil {
		s.logger.Warn("failed to write error response", zap.Error(writeErr))
	}
}

func (s *Server) classify(err error) (int, string) {
	var verr *models.ValidationError
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &herr):
		if herr.Code >= http.StatusInternalServerError {
			return herr.Code, "internal server error"
		}
		if msg, ok := herr.Message.(string); ok {
			return herr.Code, msg
		}
		return herr.Code, http.StatusText(herr.Code)
	}
	return http.StatusInternalServerError, "internal server error"
}

// bind decodes the request body into v; malformed bodies are a 400.
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return &models.ValidationError{Message: "invalid request body"}
	}
	return nil
}

// idParam parses a positive integer path parameter.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// optionalIntQuery parses an optional integer query parameter.
func optionalIntQuery(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, models.Invalid(name, "must be a non-negative integer")
	}
	return &n, nil
}

type successResponse struct {
	Success bool `json:"success"`
}

type createdResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func created(c echo.Context, id int64) error {
	return c.JSON(http.StatusCreated, createdResponse{Success: true, ID: id})
}
