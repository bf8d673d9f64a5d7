package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/gin-gonic/gin"
)

const (
	MsgInternal        = "Internal server error"
	MsgUnavailable     = "Authentication service is unavailable. Please try again later."
	MsgTooManyRequests = "Too many requests, please try again later"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Error      string   `json:"error"`
	Timestamp  string   `json:"timestamp"`
}

// MessageResponse is the body of a 2xx response that carries no data.
type MessageResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
}

var now = func() time.Time { return time.Now().UTC() }

func writeError(c *gin.Context, code int, msg ...string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		StatusCode: code,
		Message:    msg,
		Error:      http.StatusText(code),
		Timestamp:  now().Format(time.RFC3339),
	})
}

// translate maps a StructuredError to the caller-facing response. Only the
// status code selects the category; 409, 401 and 404 keep the service's
// messages and title, everything else is an internal error.
func translate(e *result.StructuredError) (int, ErrorResponse) {
	resp := ErrorResponse{Timestamp: now().Format(time.RFC3339)}

	switch e.StatusCode {
	case http.StatusConflict, http.StatusUnauthorized, http.StatusNotFound:
		resp.StatusCode = e.StatusCode
		resp.Message = e.Message
		resp.Error = e.Title
		if resp.Error == "" {
			resp.Error = http.StatusText(e.StatusCode)
		}
	default:
		resp.StatusCode = http.StatusInternalServerError
		resp.Error = http.StatusText(http.StatusInternalServerError)
		resp.Message = []string{MsgInternal}
		if e.StatusCode == http.StatusInternalServerError && len(e.Message) > 0 {
			resp.Message = e.Message
		}
	}
	if resp.Message == nil {
		resp.Message = []string{}
	}
	return resp.StatusCode, resp
}
