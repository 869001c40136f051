package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"lyricsync/internal/logging"
	"lyricsync/internal/services"
)

const headerRequestID = "X-Request-ID"

// requestContext tags the request context with an id and logs completion.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := strings.TrimSpace(req.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		ctx := services.WithSource(services.WithRequestID(req.Context(), id), "api")
		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(headerRequestID, id)

		started := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		logging.WithContext(ctx, s.logger).Info("request handled",
			logging.String("method", req.Method),
			logging.String("path", c.Path()),
			logging.Int("status", c.Response().Status),
			logging.Duration("elapsed", time.Since(started)),
		)
		return nil
	}
}

// requireToken enforces "Authorization: Bearer <token>" when a token is
// configured.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	token := strings.TrimSpace(s.opts.APIToken)
	if token == "" {
		return next
	}
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		presented, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return next(c)
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// handleError maps errors to JSON responses. echo errors keep their code;
// everything else is classified by its services marker.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := services.HTTPStatus(err)
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
	}
	ctx := c.Request().Context()
	requestID, _ := services.RequestIDFromContext(ctx)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "request failed", "api_request_failed",
			logging.String("path", c.Path()),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, errorResponse{Error: message, RequestID: requestID})
	}
	if writeErr != nil {
		s.logger.Debug("error response not written", logging.Error(writeErr))
	}
}
