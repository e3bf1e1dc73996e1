package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemDetails holds the descriptive fields of an item. They are opaque to
// the vote core and replaced wholesale on update.
type ItemDetails struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description"`
	MainPepper   string `json:"mainPepper"`
	ImageURL     string `json:"imageUrl"`
	Heat         int    `json:"heat"`
}

// Tallies is the vote-owned part of an item.
// Invariant: Likes == len(UsersLiked), Dislikes == len(UsersDisliked), and no
// user appears in both slices.
type Tallies struct {
	Likes         int      `json:"likes"`
	Dislikes      int      `json:"dislikes"`
	UsersLiked    []string `json:"usersLiked"`
	UsersDisliked []string `json:"usersDisliked"`
}

// StateOf derives the user's vote state from set membership.
func (t Tallies) StateOf(userID string) VoteState {
	for _, id := range t.UsersLiked {
		if id == userID {
			return VoteLiked
		}
	}
	for _, id := range t.UsersDisliked {
		if id == userID {
			return VoteDisliked
		}
	}
	return VoteNeutral
}

type Item struct {
	ID      uuid.UUID `json:"id"`
	OwnerID string    `json:"userId"`
	ItemDetails
	Tallies
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewItem builds a fresh item with empty tallies, whatever the client sent.
func NewItem(ownerID string, details ItemDetails, now time.Time) *Item {
	return &Item{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		ItemDetails: details,
		Tallies: Tallies{
			UsersLiked:    []string{},
			UsersDisliked: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type ItemRepository interface {
	List(ctx context.Context) ([]*Item, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*Item, error)
	Create(ctx context.Context, item *Item) error
	// UpdateDetails replaces the descriptive fields only; tallies are untouched.
	UpdateDetails(ctx context.Context, itemID uuid.UUID, details ItemDetails) (*Item, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
	VoteStore
}
