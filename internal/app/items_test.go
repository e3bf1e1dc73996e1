package app

import (
	"context"
	"testing"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/memory"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_ForcesEmptyTallies(t *testing.T) {
	env := newTestEnv(t)

	item := createItem(t, env, "owner-1")

	assert.Equal(t, "owner-1", item.OwnerID)
	assert.Equal(t, "http://localhost:3000/images/pic.png-v1", item.ImageURL)
	assert.Zero(t, item.Likes)
	assert.Zero(t, item.Dislikes)
	assert.Empty(t, item.UsersLiked)
	assert.Empty(t, item.UsersDisliked)

	stored, err := env.items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ImageURL, stored.ImageURL)
}

func TestCreateItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missingName := validDetails()
	missingName.Name = "  "
	_, err := env.svc.CreateItem(ctx, "owner", missingName, upload("a.png", "x"), "http://h")
	assert.ErrorIs(t, err, ErrInvalidItem)

	tooHot := validDetails()
	tooHot.Heat = 11
	_, err = env.svc.CreateItem(ctx, "owner", tooHot, upload("a.png", "x"), "http://h")
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = env.svc.CreateItem(ctx, "owner", validDetails(), nil, "http://h")
	assert.ErrorIs(t, err, ErrImageRequired)

	assert.Empty(t, env.images.saved, "no image is stored for a rejected item")
}

func TestCreateItem_StoreFailureRemovesImage(t *testing.T) {
	env := newTestEnv(t, withItems(func(s *memory.ItemStore) domain.ItemRepository {
		return &failingItems{ItemStore: s, err: errBoom}
	}))

	_, err := env.svc.CreateItem(context.Background(), "owner", validDetails(), upload("a.png", "x"), "http://h")
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"a.png-x"}, env.images.removed)
}

func TestUpdateItem_KeepsImageAndVotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := createItem(t, env, "owner")
	_, err := env.svc.Vote(ctx, item.ID, "voter", domain.IntentLike)
	require.NoError(t, err)

	details := validDetails()
	details.Name = "Sriracha Extra"
	details.ImageURL = "http://evil/images/other.png"
	updated, err := env.svc.UpdateItem(ctx, "owner", item.ID, details, nil, "http://h")
	require.NoError(t, err)

	assert.Equal(t, "Sriracha Extra", updated.Name)
	assert.Equal(t, item.ImageURL, updated.ImageURL)
	assert.Equal(t, 1, updated.Likes)
	assert.Equal(t, []string{"voter"}, updated.UsersLiked)
	assert.Equal(t, item.ID, updated.ID)
	assert.Empty(t, env.images.removed)
}

func TestUpdateItem_ReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	item := createItem(t, env, "owner")

	updated, err := env.svc.UpdateItem(context.Background(), "owner", item.ID, validDetails(), upload("new.png", "v2"), "http://h")
	require.NoError(t, err)

	assert.Equal(t, "http://h/images/new.png-v2", updated.ImageURL)
	assert.Equal(t, []string{"pic.png-v1"}, env.images.removed)
}

func TestUpdateItem_StoreFailureKeepsOldImage(t *testing.T) {
	env := newTestEnv(t)
	item := createItem(t, env, "owner")
	failing := newTestEnv(t, withItems(func(*memory.ItemStore) domain.ItemRepository {
		return &failingItems{ItemStore: env.items, err: errBoom}
	}))

	_, err := failing.svc.UpdateItem(context.Background(), "owner", item.ID, validDetails(), upload("new.png", "v2"), "http://h")
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"new.png-v2"}, failing.images.removed)
}

func TestUpdateItem_Ownership(t *testing.T) {
	env := newTestEnv(t)
	item := createItem(t, env, "owner")

	_, err := env.svc.UpdateItem(context.Background(), "intruder", item.ID, validDetails(), nil, "http://h")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.UpdateItem(context.Background(), "owner", uuid.New(), validDetails(), nil, "http://h")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDeleteItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := createItem(t, env, "owner")

	assert.ErrorIs(t, env.svc.DeleteItem(ctx, "intruder", item.ID), ErrForbidden)
	require.NoError(t, env.svc.DeleteItem(ctx, "owner", item.ID))

	_, err := env.svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, []string{"pic.png-v1"}, env.images.removed)

	assert.ErrorIs(t, env.svc.DeleteItem(ctx, "owner", item.ID), domain.ErrItemNotFound)
}
