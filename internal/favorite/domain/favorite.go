package domain

import (
	"fmt"
	"strings"
	"time"
)

// KeySeparator joins the user id and tip id of a favorite's storage key.
// Identifiers containing it are rejected by ValidateID.
const KeySeparator = "_"

// Favorite represents one user's bookmark of one tip.
// A favorite is never updated; removing it deletes the row.
type Favorite struct {
	ID        string    `json:"id" gorm:"primaryKey;size:255"`
	UserID    string    `json:"user_id" gorm:"not null;size:127"`
	TipID     string    `json:"tip_id" gorm:"not null;size:127"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TableName specifies the default table name
func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteKey derives the storage key of the (user, tip) pair.
func FavoriteKey(userID, tipID string) string {
	return userID + KeySeparator + tipID
}

// NewFavorite builds the record for a (user, tip) pair added at the given time.
func NewFavorite(userID, tipID string, addedAt time.Time) *Favorite {
	return &Favorite{
		ID:        FavoriteKey(userID, tipID),
		UserID:    userID,
		TipID:     tipID,
		CreatedAt: addedAt.UTC(),
	}
}

// ValidateID checks that id can take part in a favorite key.
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s id is required: %w", kind, ErrInvalidArgument)
	}
	if strings.Contains(id, KeySeparator) {
		return fmt.Errorf("%s id %q must not contain %q: %w", kind, id, KeySeparator, ErrInvalidArgument)
	}
	return nil
}

// FavoriteWithTip is a favorite joined with the current state of its tip.
// It is built per request and never stored.
type FavoriteWithTip struct {
	TipID        string    `json:"tip_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Tags         []string  `json:"tags"`
	TipCreatedAt time.Time `json:"tip_created_at"`
	AddedAt      time.Time `json:"added_at"`
}

// NewFavoriteWithTip joins f with tip. CategoryName is resolved separately.
func NewFavoriteWithTip(f Favorite, tip Tip) FavoriteWithTip {
	tags := tip.Tags
	if tags == nil {
		tags = []string{}
	}
	return FavoriteWithTip{
		TipID:        tip.ID,
		Title:        tip.Title,
		Description:  tip.Description,
		CategoryID:   tip.CategoryID,
		Tags:         tags,
		TipCreatedAt: tip.CreatedAt,
		AddedAt:      f.CreatedAt,
	}
}

// FavoritePage is one page of a user's favorites search.
type FavoritePage struct {
	Items      []FavoriteWithTip `json:"items"`
	TotalItems int               `json:"total_items"`
	PageNumber int               `json:"page_number"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// MergeFailure explains why one candidate tip id was not merged.
type MergeFailure struct {
	TipID  string `json:"tip_id"`
	Reason string `json:"reason"`
}

// Merge failure reasons
const (
	ReasonTipNotFound  = "tip not found"
	ReasonInvalidTipID = "invalid tip id"
)

// MergeOutcome summarizes one merge call.
type MergeOutcome struct {
	TotalReceived int            `json:"total_received"`
	Added         int            `json:"added"`
	Skipped       int            `json:"skipped"`
	Failed        []MergeFailure `json:"failed"`
}
