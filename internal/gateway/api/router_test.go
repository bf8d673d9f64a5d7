package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/authgateway/internal/common"
	"github.com/dmitrijs2005/authgateway/internal/gateway/authclient"
	"github.com/dmitrijs2005/authgateway/internal/gateway/ratelimit"
	"github.com/dmitrijs2005/authgateway/internal/logging"
	"github.com/dmitrijs2005/authgateway/internal/result"
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/dmitrijs2005/authgateway/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type fakeClient struct {
	calls int
	ctx   context.Context

	register  rpc.RegisterPayload
	login     rpc.LoginPayload
	change    rpc.ChangePasswordPayload
	profileID string

	userResult   result.Result[rpc.UserView]
	usersResult  result.Result[[]rpc.UserView]
	changeResult result.Result[result.Unit]
	err          error
	checkErr     error
	panics       bool
}

func (f *fakeClient) Register(ctx context.Context, p rpc.RegisterPayload) (result.Result[rpc.UserView], error) {
	f.calls++
	f.ctx = ctx
	f.register = p
	return f.userResult, f.err
}

func (f *fakeClient) GetUsers(ctx context.Context) (result.Result[[]rpc.UserView], error) {
	f.calls++
	f.ctx = ctx
	if f.panics {
		panic("kaboom")
	}
	return f.usersResult, f.err
}

func (f *fakeClient) Login(ctx context.Context, p rpc.LoginPayload) (result.Result[rpc.UserView], error) {
	f.calls++
	f.ctx = ctx
	f.login = p
	return f.userResult, f.err
}

func (f *fakeClient) ChangePassword(ctx context.Context, p rpc.ChangePasswordPayload) (result.Result[result.Unit], error) {
	f.calls++
	f.ctx = ctx
	f.change = p
	return f.changeResult, f.err
}

func (f *fakeClient) GetProfile(ctx context.Context, p rpc.GetProfilePayload) (result.Result[rpc.UserView], error) {
	f.calls++
	f.ctx = ctx
	f.profileID = p.UserID
	return f.userResult, f.err
}

func (f *fakeClient) Check(context.Context) error {
	return f.checkErr
}

// ---- helpers ----

var carol = rpc.UserView{
	ID:        "3f1e2d4c-5b6a-4789-8123-456789abcdef",
	Email:     "carol@example.com",
	FirstName: "Carol",
	LastName:  "King",
	CreatedAt: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
	UpdatedAt: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
}

func newTestRouter(t *testing.T, fc *fakeClient, cfg RouterConfig) *gin.Engine {
	t.Helper()
	r, err := NewRouter(NewHandler(fc, logging.Nop{}), logging.Nop{}, cfg)
	require.NoError(t, err)
	return r
}

func do(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

const validRegister = `{"email":"carol@example.com","firstName":"Carol","lastName":"King","password":"Passw0rd!"}`

// ---- tests ----

func TestRegister_Created(t *testing.T) {
	fc := &fakeClient{userResult: result.Ok(carol)}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodPost, "/auth/register", validRegister)
	require.Equal(t, http.StatusCreated, w.Code)

	var got rpc.UserView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, carol, got)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Equal(t, rpc.RegisterPayload{Email: "carol@example.com", FirstName: "Carol", LastName: "King", Password: "Passw0rd!"}, fc.register)
}

func TestRegister_ValidationNeverReachesService(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "bad fields",
			body: `{"email":"nope","firstName":"C","lastName":"K1ng","password":"weak"}`,
			want: []string{
				"Please provide a valid email address",
				"First name must be at least 2 characters long",
				"Last name can only contain letters",
				"Password must be at least 8 characters long",
			},
		},
		{
			name: "weak password",
			body: `{"email":"a@x.com","firstName":"Jo","lastName":"Do","password":"password1"}`,
			want: []string{validation.MsgStrongPassword},
		},
		{
			name: "unknown field",
			body: `{"email":"a@x.com","firstName":"Jo","lastName":"Do","password":"Passw0rd!","isAdmin":true}`,
			want: []string{"property isAdmin should not exist"},
		},
		{
			name: "not json",
			body: `{"email":`,
			want: []string{validation.MsgMalformedJSON},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			r := newTestRouter(t, fc, RouterConfig{})

			w := do(r, http.MethodPost, "/auth/register", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			e := decodeError(t, w)
			assert.Equal(t, http.StatusBadRequest, e.StatusCode)
			assert.Equal(t, "Bad Request", e.Error)
			assert.Equal(t, tt.want, e.Message)
			assert.NotEmpty(t, e.Timestamp)
			assert.Zero(t, fc.calls)
		})
	}
}

func TestTranslate_ByStatusCodeOnly(t *testing.T) {
	tests := []struct {
		name     string
		err      *result.StructuredError
		wantCode int
		wantMsg  []string
		wantErr  string
	}{
		{"conflict", result.Conflict("A user with email 'carol@example.com' already exists"), 409, []string{"A user with email 'carol@example.com' already exists"}, "Email Conflict"},
		{"unauthorized", result.Unauthorized("Invalid email or password"), 401, []string{"Invalid email or password"}, "Unauthorized"},
		{"not found", result.NotFound("User not found"), 404, []string{"User not found"}, "Not Found"},
		{"internal", result.Internal("Error fetching users"), 500, []string{"Error fetching users"}, "Internal Server Error"},
		{"validation from service", result.Validation("Malformed request payload"), 500, []string{MsgInternal}, "Internal Server Error"},
		{"text says conflict but code is 418", &result.StructuredError{StatusCode: 418, Message: []string{"conflict"}, Title: "Email Conflict"}, 500, []string{MsgInternal}, "Internal Server Error"},
		{"kind mismatched with code", &result.StructuredError{Kind: result.KindInternal, StatusCode: 404, Message: []string{"gone"}}, 404, []string{"gone"}, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := translate(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantCode, body.StatusCode)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantErr, body.Error)
		})
	}
}

func TestRoutes_ErrorsFromService(t *testing.T) {
	fc := &fakeClient{userResult: result.Fail[rpc.UserView](result.Conflict("A user with email 'carol@example.com' already exists"))}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodPost, "/auth/register", validRegister)
	require.Equal(t, http.StatusConflict, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, 409, e.StatusCode)
	assert.Equal(t, "Email Conflict", e.Error)

	fc.userResult = result.Fail[rpc.UserView](result.Unauthorized("Invalid email or password"))
	w = do(r, http.MethodPost, "/auth/login", `{"email":"carol@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []string{"Invalid email or password"}, decodeError(t, w).Message)

	fc.userResult = result.Fail[rpc.UserView](result.NotFound("User not found"))
	w = do(r, http.MethodGet, "/auth/users/"+carol.ID+"/profile", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, carol.ID, fc.profileID)
}

func TestLogin_OK(t *testing.T) {
	fc := &fakeClient{userResult: result.Ok(carol)}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodPost, "/auth/login", `{"email":"carol@example.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rpc.LoginPayload{Email: "carol@example.com", Password: "Passw0rd!"}, fc.login)
}

func TestGetUsers(t *testing.T) {
	fc := &fakeClient{usersResult: result.Ok([]rpc.UserView{carol})}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodGet, "/auth/users", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []rpc.UserView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []rpc.UserView{carol}, got)
}

func TestChangePassword(t *testing.T) {
	fc := &fakeClient{changeResult: result.Ok(result.Unit{})}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodPut, "/auth/users/"+carol.ID+"/password", `{"currentPassword":"Passw0rd!","newPassword":"N3wPassw0rd!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"statusCode":200,"message":["Password changed successfully"]}`, w.Body.String())
	assert.Equal(t, rpc.ChangePasswordPayload{UserID: carol.ID, CurrentPassword: "Passw0rd!", NewPassword: "N3wPassw0rd!"}, fc.change)

	fc.changeResult = result.Fail[result.Unit](result.Unauthorized("Current password is incorrect"))
	w = do(r, http.MethodPut, "/auth/users/"+carol.ID+"/password", `{"currentPassword":"Passw0rd?","newPassword":"N3wPassw0rd!"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []string{"Current password is incorrect"}, decodeError(t, w).Message)

	calls := fc.calls
	w = do(r, http.MethodPut, "/auth/users/"+carol.ID+"/password", `{"currentPassword":"Passw0rd!","newPassword":"weakpassword"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, calls, fc.calls)
}

func TestChangePassword_OutsideAlphabetIsBadRequest(t *testing.T) {
	fc := &fakeClient{changeResult: result.Ok(result.Unit{})}
	r := newTestRouter(t, fc, RouterConfig{})

	for _, pw := range []string{"N3w-Passw0rd!", "N3w Passw0rd!", "N3wPassw0rd#"} {
		w := do(r, http.MethodPut, "/auth/users/"+carol.ID+"/password", `{"currentPassword":"Passw0rd!","newPassword":"`+pw+`"}`)
		require.Equal(t, http.StatusBadRequest, w.Code, pw)
		assert.Equal(t, []string{validation.MsgStrongPassword}, decodeError(t, w).Message)
	}
	assert.Zero(t, fc.calls)
}

func TestTransportErrorIsServiceUnavailable(t *testing.T) {
	fc := &fakeClient{err: authclient.ErrUnavailable}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodGet, "/auth/users", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "Service Unavailable", e.Error)
	assert.Equal(t, []string{MsgUnavailable}, e.Message)

	fc.err = authclient.ErrClosed
	w = do(r, http.MethodGet, "/auth/users", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPanicIsInternalError(t *testing.T) {
	fc := &fakeClient{panics: true}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodGet, "/auth/users", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, []string{MsgInternal}, e.Message)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestRequestID(t *testing.T) {
	fc := &fakeClient{usersResult: result.Ok([]rpc.UserView{})}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodGet, "/auth/users", "")
	generated := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, generated)

	md, ok := metadata.FromOutgoingContext(fc.ctx)
	require.True(t, ok)
	assert.Equal(t, []string{generated}, md.Get(common.RequestIDHeaderName))

	given := "9d1c7f3a-3e0b-4a55-8f5e-2f3b4c5d6e7f"
	w = do(r, http.MethodGet, "/auth/users", "", RequestIDHeader, given)
	assert.Equal(t, given, w.Header().Get(RequestIDHeader))

	w = do(r, http.MethodGet, "/auth/users", "", RequestIDHeader, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestHealthz(t *testing.T) {
	fc := &fakeClient{}
	r := newTestRouter(t, fc, RouterConfig{})

	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	fc.checkErr = authclient.ErrUnavailable
	w = do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNoRoute(t *testing.T) {
	r := newTestRouter(t, &fakeClient{}, RouterConfig{})

	w := do(r, http.MethodDelete, "/auth/users", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"Cannot DELETE /auth/users"}, decodeError(t, w).Message)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, &fakeClient{}, RouterConfig{CORSOrigins: []string{"https://app.example"}})

	w := do(r, http.MethodOptions, "/auth/login", "",
		"Origin", "https://app.example",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/auth/login", "",
		"Origin", "https://evil.example",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit_LoginAndRegister(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fc := &fakeClient{userResult: result.Ok(carol), usersResult: result.Ok([]rpc.UserView{})}
	r := newTestRouter(t, fc, RouterConfig{Limiter: ratelimit.New(rdb, 2, time.Minute)})
	login := `{"email":"carol@example.com","password":"Passw0rd!"}`

	w := do(r, http.MethodPost, "/auth/login", login)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login", login).Code)

	w = do(r, http.MethodPost, "/auth/login", login)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, []string{MsgTooManyRequests}, decodeError(t, w).Message)

	// separate window per route
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/auth/register", validRegister).Code)

	// unlimited route
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/auth/users", "").Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	fc := &fakeClient{userResult: result.Ok(carol)}
	r := newTestRouter(t, fc, RouterConfig{Limiter: failingLimiter{}})

	w := do(r, http.MethodPost, "/auth/login", `{"email":"carol@example.com","password":"Passw0rd!"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
