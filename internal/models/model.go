package models

import (
	"fmt"
	"time"
)

// Listing categories. Uncategorized is the default for new listings.
const (
	CategoryUncategorized = "uncategorized"
	CategoryFamily        = "family"
	CategoryPersonal      = "personal"
)

// Categories lists all valid listing categories in display order.
var Categories = []string{CategoryUncategorized, CategoryFamily, CategoryPersonal}

// ValidCategory reports whether name is a known listing category.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// User represents a registered account
type User struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Listing represents an item up for auction. Price always tracks the
// highest accepted bid and never drops below StartPrice.
type Listing struct {
	ListingID   string    `json:"listing_id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartPrice  float64   `json:"start_price"`
	Price       float64   `json:"price"`
	BidCount    int       `json:"bid_count"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastBidAt   time.Time `json:"last_bid_at"`
}

// HowLong returns a human-readable age for the listing ("3 days", "2 hours").
func (l Listing) HowLong() string {
	return howLong(l.UpdatedAt)
}

// Bid represents a user's accepted offer on a listing. Bids are immutable
// once recorded.
type Bid struct {
	BidID     string    `json:"bid_id"`
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a remark left on a listing. Comments are immutable
// once recorded.
type Comment struct {
	CommentID string    `json:"comment_id"`
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HowLong returns a human-readable age for the comment.
func (c Comment) HowLong() string {
	return howLong(c.CreatedAt)
}

// howLong renders the elapsed time since t in the coarsest sensible unit.
func howLong(t time.Time) string {
	d := time.Since(t)
	days := int(d.Hours()) / 24
	seconds := int(d.Seconds())
	switch {
	case days > 7:
		return fmt.Sprintf("%d weeks", days/7)
	case days > 0:
		return fmt.Sprintf("%d days", days)
	case seconds > 3600:
		return fmt.Sprintf("%d hours", seconds/3600)
	case seconds > 60:
		return fmt.Sprintf("%d minutes", seconds/60)
	default:
		return fmt.Sprintf("%d seconds", seconds)
	}
}
