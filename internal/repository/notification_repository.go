package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs the Postgres repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (message, type, user_id, item_id, read)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return mapPgError(r.pool.QueryRow(ctx, query,
		n.Message,
		n.Type,
		n.UserID,
		n.ItemID,
		n.Read,
	).Scan(&n.ID, &n.CreatedAt))
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	const query = `
        SELECT id, message, type, user_id, item_id, read, created_at
        FROM notifications WHERE user_id=$1
        ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Type, &n.UserID, &n.ItemID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT read`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE user_id=$1 AND NOT read`, userID)
	return err
}
