package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/models"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

// PageSize is the fixed number of listings per index page.
const PageSize = 6

// ListingInput carries the editable listing fields from a create or update
// form, already bound but not yet validated.
type ListingInput struct {
	Title       string
	Description string
	StartPrice  float64
	ImageURL    string
	Category    string
}

// ListingPage is one page of browse results.
type ListingPage struct {
	Listings   []models.Listing
	Page       int
	TotalPages int
	Total      int
}

// ListingDetail aggregates everything the detail view renders.
type ListingDetail struct {
	Listing      models.Listing
	Bids         []models.Bid
	Comments     []models.Comment
	InWatchlist  bool
	LatestBidder string // username of the most recent bidder, empty if none
}

// AuctionService defines the business logic for listings, bids, watchlists,
// and comments
type AuctionService struct {
	repo repository.AuctionDB
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB) *AuctionService {
	return &AuctionService{repo: repo}
}

func validateListingInput(in ListingInput) error {
	fieldErrs := auctionerrors.FieldErrors{}
	if in.Title == "" {
		fieldErrs["title"] = "Title is required."
	}
	if in.StartPrice <= 0 {
		fieldErrs["start_price"] = "Price must be positive."
	}
	if in.Category != "" && !models.ValidCategory(in.Category) {
		fieldErrs["category"] = "Unknown category."
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	return nil
}

// CreateListing validates the input and stores a new active listing with
// the current price initialized to the starting price.
func (s *AuctionService) CreateListing(ctx context.Context, ownerID string, in ListingInput) (models.Listing, error) {
	if err := validateListingInput(in); err != nil {
		return models.Listing{}, err
	}

	category := in.Category
	if category == "" {
		category = models.CategoryUncategorized
	}

	now := time.Now().UTC()
	listing := models.Listing{
		ListingID:   utils.GenerateID(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		StartPrice:  in.StartPrice,
		Price:       in.StartPrice,
		BidCount:    0,
		ImageURL:    in.ImageURL,
		Category:    category,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastBidAt:   now,
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing: %w", err)
	}
	return listing, nil
}

// GetListing returns a single listing.
func (s *AuctionService) GetListing(ctx context.Context, listingID string) (models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// requireOwner loads the listing and rejects requesters other than its owner.
func (s *AuctionService) requireOwner(ctx context.Context, requesterID, listingID string) (models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if listing.OwnerID != requesterID {
		return models.Listing{}, fmt.Errorf("service: listing %s: %w", listingID, auctionerrors.ErrForbidden)
	}
	return listing, nil
}

// UpdateListing edits a listing. Only the owner may update.
func (s *AuctionService) UpdateListing(ctx context.Context, requesterID, listingID string, in ListingInput) (models.Listing, error) {
	listing, err := s.requireOwner(ctx, requesterID, listingID)
	if err != nil {
		return models.Listing{}, err
	}
	if err := validateListingInput(in); err != nil {
		return models.Listing{}, err
	}

	listing.Title = in.Title
	listing.Description = in.Description
	listing.StartPrice = in.StartPrice
	listing.ImageURL = in.ImageURL
	if in.Category != "" {
		listing.Category = in.Category
	}

	if err := s.repo.UpdateListing(ctx, listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to update listing %s: %w", listingID, err)
	}
	return listing, nil
}

// DeleteListing removes a listing and its dependent bids and comments.
// Only the owner may delete.
func (s *AuctionService) DeleteListing(ctx context.Context, requesterID, listingID string) error {
	if _, err := s.requireOwner(ctx, requesterID, listingID); err != nil {
		return err
	}
	if err := s.repo.DeleteListing(ctx, listingID); err != nil {
		return fmt.Errorf("service: failed to delete listing %s: %w", listingID, err)
	}
	return nil
}

// CloseListing permanently ends bidding on a listing. Only the owner may
// close; re-closing a closed listing has no further effect.
func (s *AuctionService) CloseListing(ctx context.Context, requesterID, listingID string) error {
	if _, err := s.requireOwner(ctx, requesterID, listingID); err != nil {
		return err
	}
	if err := s.repo.CloseListing(ctx, listingID); err != nil {
		return fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}
	return nil
}

// PlaceBid validates and records a user's bid on a listing. The repository
// applies the bid row and the listing's price, bid count, and last-bid
// timestamp as one atomic unit.
func (s *AuctionService) PlaceBid(ctx context.Context, listingID, userID string, amount float64) (models.Bid, error) {
	if listingID == "" || userID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID or userID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.RecordBidForListing(ctx, bid); err != nil {
		if errors.Is(err, auctionerrors.ErrBidTooLow) ||
			errors.Is(err, auctionerrors.ErrListingClosed) ||
			errors.Is(err, auctionerrors.ErrListingNotFound) {
			return models.Bid{}, err
		}
		return models.Bid{}, fmt.Errorf("service: failed to record bid on listing %s by user %s: %w", listingID, userID, err)
	}

	return bid, nil
}

// ToggleWatchlist flips the listing's membership in the user's watchlist
// and reports the new state.
func (s *AuctionService) ToggleWatchlist(ctx context.Context, userID, listingID string) (bool, error) {
	watching, err := s.repo.ToggleWatchlist(ctx, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to toggle watchlist for listing %s: %w", listingID, err)
	}
	return watching, nil
}

// AddComment attaches a comment to a listing. Any authenticated user may
// comment; empty content fails validation.
func (s *AuctionService) AddComment(ctx context.Context, listingID, userID, username, content string) (models.Comment, error) {
	if content == "" {
		return models.Comment{}, auctionerrors.FieldErrors{"content": "Comment cannot be empty."}
	}

	comment := models.Comment{
		CommentID: utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		Username:  username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to comment on listing %s: %w", listingID, err)
	}
	return comment, nil
}

// BrowseListings returns one fixed-size page of listings matching the
// filter. Pages are numbered from 1.
func (s *AuctionService) BrowseListings(ctx context.Context, filter repository.ListingFilter, page int) (ListingPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	listings, total, err := s.repo.ListListings(ctx, filter, PageSize, offset)
	if err != nil {
		return ListingPage{}, fmt.Errorf("service: failed to list listings: %w", err)
	}

	totalPages := (total + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	return ListingPage{
		Listings:   listings,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// GetListingDetail loads the listing together with its bids, comments,
// the viewer's watchlist flag, and the latest bidder's username.
func (s *AuctionService) GetListingDetail(ctx context.Context, listingID, viewerID string) (ListingDetail, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	bids, err := s.repo.GetBidsByListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}

	comments, err := s.repo.GetCommentsByListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get comments for listing %s: %w", listingID, err)
	}

	detail := ListingDetail{
		Listing:  listing,
		Bids:     bids,
		Comments: comments,
	}

	if listing.BidCount > 0 && len(bids) > 0 {
		if bidder, err := s.repo.GetUserByID(ctx, bids[0].UserID); err == nil {
			detail.LatestBidder = bidder.Username
		}
	}

	if viewerID != "" {
		watching, err := s.repo.InWatchlist(ctx, viewerID, listingID)
		if err != nil {
			return ListingDetail{}, fmt.Errorf("service: failed to check watchlist for listing %s: %w", listingID, err)
		}
		detail.InWatchlist = watching
	}

	return detail, nil
}
