package handlers

import (
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/labstack/echo/v4"
)

// RegisterErrorHandler installs the stub's error handler on e.
func RegisterErrorHandler(e *echo.Echo, logger log.Logger) {
	e.HTTPErrorHandler = NewHTTPErrorHandler(NewErrorCodeToStatusCodeMaps(), logger).Handler
}

// NewErrorCodeToStatusCodeMaps creates an error code to http status mapping.
func NewErrorCodeToStatusCodeMaps() map[string]int {
	return map[string]int{
		ErrBadParameter:        http.StatusBadRequest,
		ErrEntityNotFound:      http.StatusNotFound,
		ErrInternalServerError: http.StatusInternalServerError,
	}
}

// HTTPErrorHandler turns handler errors into {"error":{...}} answers.
type HTTPErrorHandler struct {
	errorCodeToHTTPStatusCodeMap map[string]int
	logger                       log.Logger
}

func NewHTTPErrorHandler(errorCodeToStatusCodeMaps map[string]int, logger log.Logger) *HTTPErrorHandler {
	return &HTTPErrorHandler{
		errorCodeToHTTPStatusCodeMap: errorCodeToStatusCodeMaps,
		logger:                       logger,
	}
}

func (h *HTTPErrorHandler) getStatusCode(errorCode string) int {
	if status, ok := h.errorCodeToHTTPStatusCodeMap[errorCode]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Handler handles error returned by echo Handlers.
func (h *HTTPErrorHandler) Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	svcErr := ToServiceError(err)
	if svcErr == nil {
		svcErr = NewServiceError(ErrInternalServerError, "an internal server error has occurred", err)
	}

	var statusCode int
	if he, ok := err.(*echo.HTTPError); ok {
		m, _ := he.Message.(string)
		code := ErrInternalServerError
		switch {
		case he.Code == http.StatusNotFound:
			code = ErrEntityNotFound
		case he.Code < http.StatusInternalServerError:
			code = ErrBadParameter
		}
		svcErr = NewServiceError(code, m, err)
		statusCode = he.Code
	} else {
		statusCode = h.getStatusCode(svcErr.Code)
	}

	level.Error(h.logger).Log("msg", "HTTP request error", "err", err)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(statusCode)
		return
	}
	_ = c.JSON(statusCode, ErrResponse{Error: svcErr})
}

// ErrResponse from server.
type ErrResponse struct {
	Error *ServiceError `json:"error,omitempty"`
}
