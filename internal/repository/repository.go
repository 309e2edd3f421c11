package repository

import (
	"context"

	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
)

// ListingFilter narrows ListListings results. Zero value means all listings.
type ListingFilter struct {
	OwnerUsername string // only listings created by this username
	Category      string // only listings in this category
	WatchedBy     string // only listings on this user's watchlist (user ID)
	ActiveOnly    bool   // exclude closed listings
}

// AuctionDB defines the storage interface for the auction marketplace.
//
// RecordBidForListing is the single write point for bid acceptance: it
// checks the amount against the listing's current price and, on success,
// persists the bid and updates the listing's price, bid count, and last-bid
// timestamp as one atomic unit. Implementations must serialize concurrent
// calls against the same listing.
type AuctionDB interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)

	CreateListing(ctx context.Context, listing model.Listing) error
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	UpdateListing(ctx context.Context, listing model.Listing) error
	DeleteListing(ctx context.Context, listingID string) error
	CloseListing(ctx context.Context, listingID string) error
	ListListings(ctx context.Context, filter ListingFilter, limit, offset int) ([]model.Listing, int, error)

	RecordBidForListing(ctx context.Context, bid model.Bid) error
	GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error)

	ToggleWatchlist(ctx context.Context, userID, listingID string) (bool, error)
	InWatchlist(ctx context.Context, userID, listingID string) (bool, error)

	CreateComment(ctx context.Context, comment model.Comment) error
	GetCommentsByListing(ctx context.Context, listingID string) ([]model.Comment, error)
}
