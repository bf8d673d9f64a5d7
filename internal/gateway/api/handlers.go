package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/authgateway/internal/gateway/authclient"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/dmitrijs2005/authgateway/internal/validation"
	"github.com/gin-gonic/gin"
)

const MsgPasswordChanged = "Password changed successfully"

// AuthClient is the RPC side of the gateway.
type AuthClient interface {
	Register(context.Context, rpc.RegisterPayload) (result.Result[rpc.UserView], error)
	GetUsers(context.Context) (result.Result[[]rpc.UserView], error)
	Login(context.Context, rpc.LoginPayload) (result.Result[rpc.UserView], error)
	ChangePassword(context.Context, rpc.ChangePasswordPayload) (result.Result[result.Unit], error)
	GetProfile(context.Context, rpc.GetProfilePayload) (result.Result[rpc.UserView], error)
	Check(context.Context) error
}

type Handler struct {
	auth   AuthClient
	logger logging.Logger
}

func NewHandler(auth AuthClient, l logging.Logger) *Handler {
	return &Handler{auth: auth, logger: l.With("module", "auth_handler")}
}

func (h *Handler) ctx(c *gin.Context) context.Context {
	return authclient.WithRequestID(c.Request.Context(), c.GetString(requestIDKey))
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, validation.Messages(err)...)
		return false
	}
	return true
}

// reply writes r with okStatus, the translated StructuredError, or 503
// when the auth service could not be reached.
func reply[T any](h *Handler, c *gin.Context, okStatus int, r result.Result[T], err error, ok func(T) any) {
	if err != nil {
		h.logger.Error(c.Request.Context(), "auth service call failed", "error", err, "request_id", c.GetString(requestIDKey))
		writeError(c, http.StatusServiceUnavailable, MsgUnavailable)
		return
	}
	if !r.IsOk() {
		code, body := translate(r.Err())
		c.AbortWithStatusJSON(code, body)
		return
	}
	if ok == nil {
		c.JSON(okStatus, r.Value())
		return
	}
	c.JSON(okStatus, ok(r.Value()))
}

func (h *Handler) Register(c *gin.Context) {
	var req validation.RegisterRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.auth.Register(h.ctx(c), req.Payload())
	reply(h, c, http.StatusCreated, r, err, nil)
}

// GetUsers lists every user. The route has no guard.
func (h *Handler) GetUsers(c *gin.Context) {
	r, err := h.auth.GetUsers(h.ctx(c))
	reply(h, c, http.StatusOK, r, err, nil)
}

func (h *Handler) Login(c *gin.Context) {
	var req validation.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.auth.Login(h.ctx(c), req.Payload())
	reply(h, c, http.StatusOK, r, err, nil)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req validation.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}
	r, err := h.auth.ChangePassword(h.ctx(c), req.Payload(c.Param("id")))
	reply(h, c, http.StatusOK, r, err, func(result.Unit) any {
		return MessageResponse{StatusCode: http.StatusOK, Message: []string{MsgPasswordChanged}}
	})
}

func (h *Handler) GetProfile(c *gin.Context) {
	r, err := h.auth.GetProfile(h.ctx(c), rpc.GetProfilePayload{UserID: c.Param("id")})
	reply(h, c, http.StatusOK, r, err, nil)
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.auth.Check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
