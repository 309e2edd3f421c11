package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// The write lock is held across the compare-and-apply of bid acceptance, so
// concurrent bids against one listing are serialized.
type MemoryRepo struct {
	mu        sync.RWMutex
	users     map[string]model.User      // key: userID
	usernames map[string]string          // key: lowercased username -> userID
	listings  map[string]model.Listing   // key: listingID
	bids      map[string][]model.Bid     // key: listingID -> bids, oldest first
	comments  map[string][]model.Comment // key: listingID -> comments, oldest first
	watch     map[string]map[string]bool // key: userID -> set of listingIDs
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:     make(map[string]model.User),
		usernames: make(map[string]string),
		listings:  make(map[string]model.Listing),
		bids:      make(map[string][]model.Bid),
		comments:  make(map[string][]model.Comment),
		watch:     make(map[string]map[string]bool),
	}
}

// CreateUser stores a new user, enforcing username uniqueness.
func (r *MemoryRepo) CreateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := r.usernames[key]; ok {
		return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrUsernameTaken)
	}
	r.users[user.UserID] = user
	r.usernames[key] = user.UserID
	return nil
}

// GetUserByUsername returns the user with the given username.
func (r *MemoryRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usernames[strings.ToLower(username)]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", username, auctionerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}

// GetUserByID returns the user with the given ID.
func (r *MemoryRepo) GetUserByID(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateListing stores a new listing.
func (r *MemoryRepo) CreateListing(_ context.Context, listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[listing.ListingID] = listing
	return nil
}

// GetListing returns the listing with the given ID.
func (r *MemoryRepo) GetListing(_ context.Context, listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// UpdateListing replaces the editable fields of a listing.
func (r *MemoryRepo) UpdateListing(_ context.Context, listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.listings[listing.ListingID]
	if !ok {
		return fmt.Errorf("update listing %s: %w", listing.ListingID, auctionerrors.ErrListingNotFound)
	}
	current.Title = listing.Title
	current.Description = listing.Description
	current.StartPrice = listing.StartPrice
	current.ImageURL = listing.ImageURL
	current.Category = listing.Category
	current.UpdatedAt = time.Now().UTC()
	r.listings[listing.ListingID] = current
	return nil
}

// DeleteListing removes a listing together with its bids, comments, and
// watchlist memberships.
func (r *MemoryRepo) DeleteListing(_ context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listingID]; !ok {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	delete(r.listings, listingID)
	delete(r.bids, listingID)
	delete(r.comments, listingID)
	for _, set := range r.watch {
		delete(set, listingID)
	}
	return nil
}

// CloseListing marks a listing inactive. Closing an already-closed listing
// has no further effect.
func (r *MemoryRepo) CloseListing(_ context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if !listing.Active {
		return nil
	}
	listing.Active = false
	listing.UpdatedAt = time.Now().UTC()
	r.listings[listingID] = listing
	return nil
}

// ListListings returns one page of listings matching the filter, newest bid
// first, together with the total match count.
func (r *MemoryRepo) ListListings(_ context.Context, filter ListingFilter, limit, offset int) ([]model.Listing, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ownerID string
	if filter.OwnerUsername != "" {
		id, ok := r.usernames[strings.ToLower(filter.OwnerUsername)]
		if !ok {
			return []model.Listing{}, 0, nil
		}
		ownerID = id
	}

	matched := make([]model.Listing, 0)
	for _, l := range r.listings {
		if filter.ActiveOnly && !l.Active {
			continue
		}
		if ownerID != "" && l.OwnerID != ownerID {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.WatchedBy != "" && !r.watch[filter.WatchedBy][l.ListingID] {
			continue
		}
		matched = append(matched, l)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LastBidAt.After(matched[j].LastBidAt)
	})

	total := len(matched)
	if offset >= total {
		return []model.Listing{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// RecordBidForListing accepts a bid if it strictly exceeds the listing's
// current price, applying the bid row, price, bid count, and last-bid
// timestamp under one lock. On rejection nothing is mutated.
func (r *MemoryRepo) RecordBidForListing(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[bid.ListingID]
	if !ok {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	if !listing.Active {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingClosed)
	}
	if bid.Amount <= listing.Price {
		return fmt.Errorf("record bid for listing %s: %w - current price is %.2f",
			bid.ListingID, auctionerrors.ErrBidTooLow, listing.Price)
	}

	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)
	listing.Price = bid.Amount
	listing.BidCount++
	listing.LastBidAt = bid.CreatedAt
	listing.UpdatedAt = bid.CreatedAt
	r.listings[bid.ListingID] = listing
	return nil
}

// GetBidsByListing returns all bids for a listing, newest first.
func (r *MemoryRepo) GetBidsByListing(_ context.Context, listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := append([]model.Bid(nil), r.bids[listingID]...)
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

// ToggleWatchlist flips the user's watchlist membership for a listing and
// reports the resulting state.
func (r *MemoryRepo) ToggleWatchlist(_ context.Context, userID, listingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listingID]; !ok {
		return false, fmt.Errorf("toggle watchlist for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	set, ok := r.watch[userID]
	if !ok {
		set = make(map[string]bool)
		r.watch[userID] = set
	}
	if set[listingID] {
		delete(set, listingID)
		return false, nil
	}
	set[listingID] = true
	return true, nil
}

// InWatchlist reports whether the listing is on the user's watchlist.
func (r *MemoryRepo) InWatchlist(_ context.Context, userID, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.watch[userID][listingID], nil
}

// CreateComment stores a new comment on a listing.
func (r *MemoryRepo) CreateComment(_ context.Context, comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[comment.ListingID]; !ok {
		return fmt.Errorf("create comment for listing %s: %w", comment.ListingID, auctionerrors.ErrListingNotFound)
	}
	if comment.Username == "" {
		if user, ok := r.users[comment.UserID]; ok {
			comment.Username = user.Username
		}
	}
	r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
	return nil
}

// GetCommentsByListing returns all comments for a listing, newest first.
func (r *MemoryRepo) GetCommentsByListing(_ context.Context, listingID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := append([]model.Comment(nil), r.comments[listingID]...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}
