package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	auction "github.com/dumbledor90/lumi-auctions-webapp/internal/auctionService"
	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
	"github.com/dumbledor90/lumi-auctions-webapp/services/auction/helpers"
)

type AuctionServiceInterface interface {
	CreateListing(ctx context.Context, ownerID string, in auction.ListingInput) (model.Listing, error)
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
	UpdateListing(ctx context.Context, requesterID, listingID string, in auction.ListingInput) (model.Listing, error)
	DeleteListing(ctx context.Context, requesterID, listingID string) error
	CloseListing(ctx context.Context, requesterID, listingID string) error
	PlaceBid(ctx context.Context, listingID, userID string, amount float64) (model.Bid, error)
	ToggleWatchlist(ctx context.Context, userID, listingID string) (bool, error)
	AddComment(ctx context.Context, listingID, userID, username, content string) (model.Comment, error)
	BrowseListings(ctx context.Context, filter repository.ListingFilter, page int) (auction.ListingPage, error)
	GetListingDetail(ctx context.Context, listingID, viewerID string) (auction.ListingDetail, error)
}

// ListingHandler serves the browsing, listing lifecycle, bid, watchlist,
// and comment pages.
type ListingHandler struct {
	service AuctionServiceInterface
}

func NewListingHandler(service AuctionServiceInterface) *ListingHandler {
	return &ListingHandler{service: service}
}

func (h *ListingHandler) renderIndex(c *gin.Context, page auction.ListingPage, extra gin.H) {
	data := gin.H{
		"Listings":    page.Listings,
		"Page":        page.Page,
		"TotalPages":  page.TotalPages,
		"PrevPage":    page.Page - 1,
		"NextPage":    page.Page + 1,
		"CurrentUser": helpers.CurrentUsername(c),
	}
	for k, v := range extra {
		data[k] = v
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// IndexHandler handles GET / and GET /profile/:username
func (h *ListingHandler) IndexHandler(c *gin.Context) {
	username := c.Param("username")
	filter := repository.ListingFilter{ActiveOnly: true, OwnerUsername: username}

	page, err := h.service.BrowseListings(c.Request.Context(), filter, helpers.ParsePage(c))
	if err != nil {
		helpers.RenderError(c, "IndexHandler", err)
		return
	}
	h.renderIndex(c, page, gin.H{"ProfileUsername": username})
}

// WatchlistHandler handles GET /watchlist
func (h *ListingHandler) WatchlistHandler(c *gin.Context) {
	filter := repository.ListingFilter{ActiveOnly: true, WatchedBy: helpers.CurrentUserID(c)}

	page, err := h.service.BrowseListings(c.Request.Context(), filter, helpers.ParsePage(c))
	if err != nil {
		helpers.RenderError(c, "WatchlistHandler", err)
		return
	}
	h.renderIndex(c, page, gin.H{"IsWatchlist": true})
}

// CategoriesHandler handles GET /c/ and GET /c/:category
func (h *ListingHandler) CategoriesHandler(c *gin.Context) {
	category := c.Param("category")
	filter := repository.ListingFilter{ActiveOnly: true, Category: category}

	page, err := h.service.BrowseListings(c.Request.Context(), filter, helpers.ParsePage(c))
	if err != nil {
		helpers.RenderError(c, "CategoriesHandler", err)
		return
	}
	c.HTML(http.StatusOK, "categories.html", gin.H{
		"Categories":  model.Categories,
		"Selected":    category,
		"Listings":    page.Listings,
		"Page":        page.Page,
		"TotalPages":  page.TotalPages,
		"PrevPage":    page.Page - 1,
		"NextPage":    page.Page + 1,
		"CurrentUser": helpers.CurrentUsername(c),
	})
}

// ShowCreateHandler handles GET /create
func (h *ListingHandler) ShowCreateHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "listing_form.html", gin.H{
		"Heading":    "Create Listing",
		"Form":       helpers.ListingForm{},
		"Errors":     auctionerrors.FieldErrors{},
		"Categories": model.Categories,
	})
}

// CreateHandler handles POST /create
func (h *ListingHandler) CreateHandler(c *gin.Context) {
	var req helpers.ListingForm
	_ = c.ShouldBind(&req)

	listing, err := h.service.CreateListing(c.Request.Context(), helpers.CurrentUserID(c), auction.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		StartPrice:  req.StartPrice,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
	if err != nil {
		if fieldErrs, ok := auctionerrors.AsFieldErrors(err); ok {
			c.HTML(http.StatusOK, "listing_form.html", gin.H{
				"Heading":    "Create Listing",
				"Form":       req,
				"Errors":     fieldErrs,
				"Categories": model.Categories,
			})
			return
		}
		helpers.RenderError(c, "CreateHandler", err)
		return
	}

	helpers.LogSuccess("CreateHandler", "listing created", map[string]any{
		"listing_id": listing.ListingID,
		"owner_id":   listing.OwnerID,
	})
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *ListingHandler) renderDetail(c *gin.Context, detail auction.ListingDetail, bidError, commentError string) {
	c.HTML(http.StatusOK, "detail.html", gin.H{
		"Listing":      detail.Listing,
		"Bids":         detail.Bids,
		"Comments":     detail.Comments,
		"InWatchlist":  detail.InWatchlist,
		"LatestBidder": detail.LatestBidder,
		"IsOwner":      helpers.CurrentUserID(c) == detail.Listing.OwnerID,
		"CurrentUser":  helpers.CurrentUsername(c),
		"BidError":     bidError,
		"CommentError": commentError,
	})
}

// DetailHandler handles GET /detail/:id
func (h *ListingHandler) DetailHandler(c *gin.Context) {
	detail, err := h.service.GetListingDetail(c.Request.Context(), c.Param("id"), helpers.CurrentUserID(c))
	if err != nil {
		helpers.RenderError(c, "DetailHandler", err)
		return
	}
	h.renderDetail(c, detail, "", "")
}

// DetailPostHandler handles POST /detail/:id. The body shape selects the
// sub-action: a bid_price field places a bid, a watchlist key toggles
// membership, anything else posts a comment.
func (h *ListingHandler) DetailPostHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	if userID == "" {
		helpers.RedirectToLogin(c)
		return
	}
	listingID := c.Param("id")

	if rawBid, ok := c.GetPostForm("bid_price"); ok {
		h.placeBid(c, listingID, userID, rawBid)
		return
	}

	if _, ok := c.GetPostForm("watchlist"); ok {
		if _, err := h.service.ToggleWatchlist(c.Request.Context(), userID, listingID); err != nil {
			helpers.RenderError(c, "DetailPostHandler", err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/detail/"+listingID)
		return
	}

	h.postComment(c, listingID, userID)
}

func (h *ListingHandler) placeBid(c *gin.Context, listingID, userID, rawBid string) {
	amount, parseErr := strconv.ParseFloat(rawBid, 64)

	var err error
	if parseErr != nil {
		err = auctionerrors.ErrInvalidBid
	} else {
		_, err = h.service.PlaceBid(c.Request.Context(), listingID, userID, amount)
	}

	if err != nil {
		var message string
		switch {
		case errors.Is(err, auctionerrors.ErrBidTooLow):
			message = "Bid price must be larger than the current price."
		case errors.Is(err, auctionerrors.ErrListingClosed):
			message = "This auction is closed."
		case errors.Is(err, auctionerrors.ErrInvalidBid):
			message = "Enter a valid bid amount."
		default:
			helpers.RenderError(c, "DetailPostHandler", err)
			return
		}

		detail, detailErr := h.service.GetListingDetail(c.Request.Context(), listingID, userID)
		if detailErr != nil {
			helpers.RenderError(c, "DetailPostHandler", detailErr)
			return
		}
		h.renderDetail(c, detail, message, "")
		return
	}

	helpers.LogSuccess("DetailPostHandler", "bid placed", map[string]any{
		"listing_id": listingID,
		"user_id":    userID,
		"amount":     amount,
	})
	c.Redirect(http.StatusSeeOther, "/detail/"+listingID)
}

func (h *ListingHandler) postComment(c *gin.Context, listingID, userID string) {
	var req helpers.CommentForm
	_ = c.ShouldBind(&req)

	_, err := h.service.AddComment(c.Request.Context(), listingID, userID, helpers.CurrentUsername(c), req.Content)
	if err != nil {
		if fieldErrs, ok := auctionerrors.AsFieldErrors(err); ok {
			detail, detailErr := h.service.GetListingDetail(c.Request.Context(), listingID, userID)
			if detailErr != nil {
				helpers.RenderError(c, "DetailPostHandler", detailErr)
				return
			}
			h.renderDetail(c, detail, "", fieldErrs["content"])
			return
		}
		helpers.RenderError(c, "DetailPostHandler", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/detail/"+listingID)
}

// loadOwned fetches the listing for an owner-only page, rendering forbidden
// or not-found when the requester may not act on it.
func (h *ListingHandler) loadOwned(c *gin.Context, handlerName string) (model.Listing, bool) {
	listing, err := h.service.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		helpers.RenderError(c, handlerName, err)
		return model.Listing{}, false
	}
	if listing.OwnerID != helpers.CurrentUserID(c) {
		helpers.RenderError(c, handlerName, auctionerrors.ErrForbidden)
		return model.Listing{}, false
	}
	return listing, true
}

// ShowUpdateHandler handles GET /update/:id
func (h *ListingHandler) ShowUpdateHandler(c *gin.Context) {
	listing, ok := h.loadOwned(c, "ShowUpdateHandler")
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "listing_form.html", gin.H{
		"Heading": "Edit Listing",
		"Form": helpers.ListingForm{
			Title:       listing.Title,
			Description: listing.Description,
			StartPrice:  listing.StartPrice,
			ImageURL:    listing.ImageURL,
			Category:    listing.Category,
		},
		"Errors":     auctionerrors.FieldErrors{},
		"Categories": model.Categories,
	})
}

// UpdateHandler handles POST /update/:id
func (h *ListingHandler) UpdateHandler(c *gin.Context) {
	var req helpers.ListingForm
	_ = c.ShouldBind(&req)

	listingID := c.Param("id")
	_, err := h.service.UpdateListing(c.Request.Context(), helpers.CurrentUserID(c), listingID, auction.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		StartPrice:  req.StartPrice,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
	if err != nil {
		if fieldErrs, ok := auctionerrors.AsFieldErrors(err); ok {
			c.HTML(http.StatusOK, "listing_form.html", gin.H{
				"Heading":    "Edit Listing",
				"Form":       req,
				"Errors":     fieldErrs,
				"Categories": model.Categories,
			})
			return
		}
		helpers.RenderError(c, "UpdateHandler", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/detail/"+listingID)
}

// DeleteConfirmHandler handles GET /delete/:id
func (h *ListingHandler) DeleteConfirmHandler(c *gin.Context) {
	listing, ok := h.loadOwned(c, "DeleteConfirmHandler")
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "delete_confirm.html", gin.H{"Listing": listing})
}

// DeleteHandler handles POST /delete/:id
func (h *ListingHandler) DeleteHandler(c *gin.Context) {
	listingID := c.Param("id")
	if err := h.service.DeleteListing(c.Request.Context(), helpers.CurrentUserID(c), listingID); err != nil {
		helpers.RenderError(c, "DeleteHandler", err)
		return
	}
	helpers.LogSuccess("DeleteHandler", "listing deleted", map[string]any{"listing_id": listingID})
	c.Redirect(http.StatusSeeOther, "/")
}

// CloseConfirmHandler handles GET /close/:id
func (h *ListingHandler) CloseConfirmHandler(c *gin.Context) {
	listing, ok := h.loadOwned(c, "CloseConfirmHandler")
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "close_confirm.html", gin.H{"Listing": listing})
}

// CloseHandler handles POST /close/:id
func (h *ListingHandler) CloseHandler(c *gin.Context) {
	listingID := c.Param("id")
	if err := h.service.CloseListing(c.Request.Context(), helpers.CurrentUserID(c), listingID); err != nil {
		helpers.RenderError(c, "CloseHandler", err)
		return
	}
	helpers.LogSuccess("CloseHandler", "listing closed", map[string]any{"listing_id": listingID})
	c.Redirect(http.StatusSeeOther, "/detail/"+listingID)
}
