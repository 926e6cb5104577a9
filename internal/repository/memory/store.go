// Package memory holds mutex-guarded in-memory repositories. It backs the
// service in mock mode and gives tests isolated fixtures.
package memory

import (
	"github.com/spec-kit/lostfound-service/internal/repository"
)

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Items:          NewItemRepository(),
		Users:          NewUserRepository(),
		Notifications:  NewNotificationRepository(),
		Messages:       NewMessageRepository(),
		PasswordResets: NewPasswordResetRepository(),
	}
}
