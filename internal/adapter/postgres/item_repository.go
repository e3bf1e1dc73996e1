package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// itemColumns must match the Scan order in scanItem.
const itemColumns = `id, owner_id, name, manufacturer, description, main_pepper, image_url, heat,
	likes, dislikes, users_liked, users_disliked, created_at, updated_at`

// applyTransitionSQL moves one user between the vote sets and adjusts both
// counters in a single statement. The WHERE clause is the compare-and-swap:
// it only matches while the user's membership is still what the caller read.
const applyTransitionSQL = `
UPDATE items SET
	likes = likes + @like_delta,
	dislikes = dislikes + @dislike_delta,
	users_liked = CASE WHEN @to_liked
		THEN array_append(array_remove(users_liked, @user_id::text), @user_id::text)
		ELSE array_remove(users_liked, @user_id::text) END,
	users_disliked = CASE WHEN @to_disliked
		THEN array_append(array_remove(users_disliked, @user_id::text), @user_id::text)
		ELSE array_remove(users_disliked, @user_id::text) END,
	updated_at = now()
WHERE id = @id
	AND (@user_id::text = ANY(users_liked)) = @from_liked
	AND (@user_id::text = ANY(users_disliked)) = @from_disliked
RETURNING likes, dislikes, users_liked, users_disliked`

// ItemRepo implements domain.ItemRepository backed by PostgreSQL.
type ItemRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ItemRepository = (*ItemRepo)(nil)

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Manufacturer, &item.Description,
		&item.MainPepper, &item.ImageURL, &item.Heat,
		&item.Likes, &item.Dislikes, &item.UsersLiked, &item.UsersDisliked,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepo) List(ctx context.Context) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *ItemRepo) Create(ctx context.Context, item *domain.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, '{}', '{}', $9, $10)`,
		item.ID, item.OwnerID, item.Name, item.Manufacturer, item.Description,
		item.MainPepper, item.ImageURL, item.Heat, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *ItemRepo) UpdateDetails(ctx context.Context, itemID uuid.UUID, d domain.ItemDetails) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE items SET
			name = $2, manufacturer = $3, description = $4, main_pepper = $5,
			image_url = $6, heat = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+itemColumns,
		itemID, d.Name, d.Manufacturer, d.Description, d.MainPepper, d.ImageURL, d.Heat,
	)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (r *ItemRepo) Delete(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepo) VoteState(ctx context.Context, itemID uuid.UUID, userID string) (domain.VoteState, *domain.Tallies, error) {
	var t domain.Tallies
	err := r.pool.QueryRow(ctx,
		`SELECT likes, dislikes, users_liked, users_disliked FROM items WHERE id = $1`, itemID,
	).Scan(&t.Likes, &t.Dislikes, &t.UsersLiked, &t.UsersDisliked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VoteNeutral, nil, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.VoteNeutral, nil, fmt.Errorf("failed to read vote state: %w", err)
	}
	return t.StateOf(userID), &t, nil
}

func (r *ItemRepo) ApplyTransition(ctx context.Context, itemID uuid.UUID, userID string, t domain.Transition) (*domain.Tallies, error) {
	var out domain.Tallies
	err := r.pool.QueryRow(ctx, applyTransitionSQL, pgx.NamedArgs{
		"id":            itemID,
		"user_id":       userID,
		"like_delta":    t.LikeDelta,
		"dislike_delta": t.DislikeDelta,
		"to_liked":      t.To == domain.VoteLiked,
		"to_disliked":   t.To == domain.VoteDisliked,
		"from_liked":    t.From == domain.VoteLiked,
		"from_disliked": t.From == domain.VoteDisliked,
	}).Scan(&out.Likes, &out.Dislikes, &out.UsersLiked, &out.UsersDisliked)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missOrConflict(ctx, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply vote: %w", err)
	}
	return &out, nil
}

// missOrConflict tells why the conditional update matched no row.
func (r *ItemRepo) missOrConflict(ctx context.Context, itemID uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return domain.ErrItemNotFound
	}
	return domain.ErrVoteConflict
}
