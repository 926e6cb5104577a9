package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// MessageRepository persists contact messages between users.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	GetByID(ctx context.Context, id int64) (*domain.ContactMessage, error)
	List(ctx context.Context, filter MessageFilter) ([]domain.ContactMessage, error)
	UpdateStatus(ctx context.Context, id int64, status domain.MessageStatus) error
	Delete(ctx context.Context, id int64) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository constructs the Postgres repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, item_id, sender_id, recipient_id, body, status, created_at`

func (r *messageRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	const query = `
        INSERT INTO contact_messages (item_id, sender_id, recipient_id, body, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return mapPgError(r.pool.QueryRow(ctx, query,
		msg.ItemID,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
		msg.Status,
	).Scan(&msg.ID, &msg.CreatedAt))
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.ContactMessage, error) {
	msg, err := scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM contact_messages WHERE id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return msg, nil
}

func (r *messageRepository) List(ctx context.Context, filter MessageFilter) ([]domain.ContactMessage, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.RecipientID != nil {
		args = append(args, *filter.RecipientID)
		clauses = append(clauses, fmt.Sprintf("recipient_id=$%d", len(args)))
	}
	if filter.SenderID != nil {
		args = append(args, *filter.SenderID)
		clauses = append(clauses, fmt.Sprintf("sender_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + messageColumns + ` FROM contact_messages WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ContactMessage{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id int64, status domain.MessageStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE contact_messages SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := row.Scan(
		&msg.ID,
		&msg.ItemID,
		&msg.SenderID,
		&msg.RecipientID,
		&msg.Body,
		&msg.Status,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}
