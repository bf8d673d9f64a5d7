package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	signup         = RegisterRequest
	passwordChange = ChangePasswordRequest
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Passw0rd!", true},
		{"Aa1@Aa1@", true},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!!", false},
		{"Password11", false},
		{"Passw0rd#", false},
		{"N3w-Passw0rd!", false},
		{"Passw0rd!" + strings.Repeat("a", 70), true},
		{"Pass w0rd!", false},
		{"Pässw0rd!", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword(tt.in))
		})
	}
}

func TestPasswordChange_OutsideAlphabet(t *testing.T) {
	err := newValidator(t).Struct(passwordChange{CurrentPassword: "Passw0rd!", NewPassword: "N3w-Passw0rd!"})
	require.Error(t, err)
	assert.Equal(t, []string{MsgStrongPassword}, Messages(err))

	require.NoError(t, newValidator(t).Struct(passwordChange{CurrentPassword: "Passw0rd!", NewPassword: "N3wPassw0rd!"}))
}

func TestMessages_Signup(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		in   signup
		want []string
	}{
		{
			name: "valid",
			in:   signup{Email: "a@x.com", FirstName: "Jo", LastName: "Do", Password: "Passw0rd!"},
		},
		{
			name: "everything wrong",
			in:   signup{Email: "nope", FirstName: "J", LastName: "D0e", Password: "short"},
			want: []string{
				"Please provide a valid email address",
				"First name must be at least 2 characters long",
				"Last name can only contain letters",
				"Password must be at least 8 characters long",
			},
		},
		{
			name: "missing",
			in:   signup{},
			want: []string{"Email is required", "First name is required", "Last name is required", "Password is required"},
		},
		{
			name: "weak password",
			in:   signup{Email: "a@x.com", FirstName: "Jo", LastName: "Do", Password: "password123"},
			want: []string{MsgStrongPassword},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, Messages(err))
		})
	}
}

func TestMessages_PasswordChangeFallbacks(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(passwordChange{CurrentPassword: "short", NewPassword: "alllowercase"})
	assert.Equal(t, []string{
		"currentPassword must be longer than or equal to 8 characters",
		MsgStrongPassword,
	}, Messages(err))

	err = v.Struct(passwordChange{})
	assert.Equal(t, []string{
		"currentPassword should not be empty",
		"newPassword should not be empty",
	}, Messages(err))
}

func TestMessages_DecodeErrors(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"email":"a@x.com","role":"admin"}`))
	dec.DisallowUnknownFields()
	var s signup
	err := dec.Decode(&s)
	require.Error(t, err)
	assert.Equal(t, []string{"property role should not exist"}, Messages(err))

	err = json.Unmarshal([]byte(`{"email":5}`), &s)
	require.Error(t, err)
	assert.Equal(t, []string{"email must be a string"}, Messages(err))

	err = json.Unmarshal([]byte(`{"email":`), &s)
	require.Error(t, err)
	assert.Equal(t, []string{MsgMalformedJSON}, Messages(err))

	assert.Equal(t, []string{MsgMalformedJSON}, Messages(errors.New("EOF")))
	assert.Nil(t, Messages(nil))
}

func TestLoginRequest(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(LoginRequest{Email: "a@x.com", Password: "x"}))
	assert.Equal(t, []string{"Please provide a valid email address", "Password is required"},
		Messages(v.Struct(LoginRequest{Email: "a"})))
}

func TestPayloads(t *testing.T) {
	r := RegisterRequest{Email: "a@x.com", FirstName: "Jo", LastName: "Do", Password: "Passw0rd!"}
	assert.Equal(t, rpc.RegisterPayload{Email: "a@x.com", FirstName: "Jo", LastName: "Do", Password: "Passw0rd!"}, r.Payload())

	c := ChangePasswordRequest{CurrentPassword: "old", NewPassword: "new"}
	assert.Equal(t, rpc.ChangePasswordPayload{UserID: "id", CurrentPassword: "old", NewPassword: "new"}, c.Payload("id"))
}

func TestInit_RegistersOnGinEngine(t *testing.T) {
	require.NoError(t, Init())
}
