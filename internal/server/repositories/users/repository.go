// Package users persists user accounts. Lookups of missing rows return
// common.ErrorNotFound; inserts that hit the unique email index return
// common.ErrorAlreadyExists. Every other failure is wrapped as "db error".
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, hash string, updatedAt time.Time) error
	ListAll(ctx context.Context) ([]*models.User, error)
}

// validID reports whether id can be a stored user id. Ids are UUIDs, so
// anything else cannot match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
