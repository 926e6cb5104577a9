package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a conditional write finds the record in
	// a state that forbids it.
	ErrConflict = errors.New("record state conflict")
	// ErrInUse is returned when a delete would orphan referencing rows.
	ErrInUse = errors.New("record still referenced")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// ItemFilter narrows item listings at the store level. Keyword, location
// and date filtering happen in the search package.
type ItemFilter struct {
	ReportedBy *int64
	Types      []domain.ItemType
	Statuses   []domain.ItemStatus
	Categories []string
}

// MessageFilter narrows contact message listings.
type MessageFilter struct {
	RecipientID *int64
	SenderID    *int64
	Status      *domain.MessageStatus
}

// Store groups every repository the services need.
type Store struct {
	Items          ItemRepository
	Users          UserRepository
	Notifications  NotificationRepository
	Messages       MessageRepository
	PasswordResets PasswordResetRepository
}

// NewPostgresStore wires every Postgres repository over one pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Items:          NewItemRepository(pool),
		Users:          NewUserRepository(pool),
		Notifications:  NewNotificationRepository(pool),
		Messages:       NewMessageRepository(pool),
		PasswordResets: NewPasswordResetRepository(pool),
	}
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case foreignKeyViolation:
			return ErrInUse
		}
	}
	return err
}
