// Package models holds the auth service's persistent records.
package models

import (
	"time"

	"github.com/dmitrijs2005/authgateway/internal/rpc"
)

// User is a stored account. PasswordHash never leaves the service; use View
// for anything sent over the wire.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) View() rpc.UserView {
	return rpc.UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Views projects a list of users, preserving order.
func Views(users []*User) []rpc.UserView {
	out := make([]rpc.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out
}
