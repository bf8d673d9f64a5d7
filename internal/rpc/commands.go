package rpc

import "time"

const ServiceName = "authgateway.v1.Authentication"

// Command names a unary method of ServiceName.
type Command string

const (
	CommandRegister       Command = "register"
	CommandGetUsers       Command = "get_users"
	CommandLogin          Command = "login"
	CommandChangePassword Command = "change_password"
	CommandGetProfile     Command = "get_profile"
)

// Commands lists every command in a stable order.
var Commands = []Command{
	CommandRegister,
	CommandGetUsers,
	CommandLogin,
	CommandChangePassword,
	CommandGetProfile,
}

// FullMethod returns the gRPC method path for c, e.g.
// "/authgateway.v1.Authentication/login".
func FullMethod(c Command) string {
	return "/" + ServiceName + "/" + string(c)
}

type RegisterPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type GetUsersPayload struct{}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordPayload struct {
	UserID          string `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type GetProfilePayload struct {
	UserID string `json:"userId"`
}

// UserView is the password-free projection of a stored user.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
