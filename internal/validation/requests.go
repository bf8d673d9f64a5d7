package validation

import (
	"github.com/dmitrijs2005/authgateway/internal/rpc"
	"github.com/go-playground/validator/v10"
)

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required,min=2,letters"`
	LastName  string `json:"lastName" binding:"required,min=2,letters"`
	Password  string `json:"password" binding:"required,min=8,strongpwd"`
}

func (r RegisterRequest) Payload() rpc.RegisterPayload {
	return rpc.RegisterPayload{Email: r.Email, FirstName: r.FirstName, LastName: r.LastName, Password: r.Password}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Payload() rpc.LoginPayload {
	return rpc.LoginPayload{Email: r.Email, Password: r.Password}
}

// ChangePasswordRequest is the body of a password change; the user id
// comes from the route.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required,min=8"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,strongpwd"`
}

func (r ChangePasswordRequest) Payload(userID string) rpc.ChangePasswordPayload {
	return rpc.ChangePasswordPayload{UserID: userID, CurrentPassword: r.CurrentPassword, NewPassword: r.NewPassword}
}

// New returns a standalone validator that reads the same "binding" tags
// and rules as the gateway.
func New() (*validator.Validate, error) {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		return nil, err
	}
	return v, nil
}
