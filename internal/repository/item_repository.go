package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lostfound-service/internal/domain"
)

// ItemRepository encapsulates item persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
	// Claim marks the item claimed by claimerID unless it is already
	// claimed or returned, in which case it returns ErrConflict.
	Claim(ctx context.Context, id, claimerID int64, at time.Time) (*domain.Item, error)
}

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository instantiates the Postgres repository.
func NewItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &itemRepository{pool: pool}
}

const itemColumns = `id, description, location, reported_date, status, type, category,
               COALESCE(image_url, ''), reported_by_user_id, claimed_by_user_id, claimed_date,
               created_at, updated_at`

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO items (description, location, reported_date, status, type, category, image_url,
            reported_by_user_id, claimed_by_user_id, claimed_date)
        VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.Description,
		item.Location,
		item.ReportedDate,
		item.Status,
		item.Type,
		item.Category,
		item.ImageURL,
		item.ReportedByUserID,
		item.ClaimedByUserID,
		item.ClaimedDate,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return mapPgError(err)
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	const query = `
        UPDATE items SET description=$1, location=$2, reported_date=$3, status=$4, type=$5, category=$6,
            image_url=NULLIF($7,''), claimed_by_user_id=$8, claimed_date=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.Description,
		item.Location,
		item.ReportedDate,
		item.Status,
		item.Type,
		item.Category,
		item.ImageURL,
		item.ClaimedByUserID,
		item.ClaimedDate,
		item.ID,
	).Scan(&item.UpdatedAt)
	return mapPgError(err)
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepository) Claim(ctx context.Context, id, claimerID int64, at time.Time) (*domain.Item, error) {
	query := `
        UPDATE items SET status=$1, claimed_by_user_id=$2, claimed_date=$3, updated_at=NOW()
        WHERE id=$4 AND status NOT IN ($5, $6)
        RETURNING ` + itemColumns
	item, err := scanItem(r.pool.QueryRow(ctx, query,
		domain.ItemStatusClaimed, claimerID, at, id,
		domain.ItemStatusClaimed, domain.ItemStatusReturned,
	))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError(err)
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrConflict
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id=$1`
	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]domain.Item, error) {
	base := `SELECT ` + itemColumns + ` FROM items`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReportedBy != nil {
		args = append(args, *filter.ReportedBy)
		clauses = append(clauses, fmt.Sprintf("reported_by_user_id=$%d", len(args)))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, domain.NormalizeCategory(category))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("LOWER(category) IN (%s)", strings.Join(placeholders, ",")))
	}

	query := base + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY reported_date DESC, id DESC"
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.Description,
		&item.Location,
		&item.ReportedDate,
		&item.Status,
		&item.Type,
		&item.Category,
		&item.ImageURL,
		&item.ReportedByUserID,
		&item.ClaimedByUserID,
		&item.ClaimedDate,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
