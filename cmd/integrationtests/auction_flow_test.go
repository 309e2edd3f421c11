package integrationtests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// The whole happy path: register two users, list an item, outbid, watch,
// comment, close, and verify a closed auction takes no more bids.
func TestAuctionLifecycle(t *testing.T) {
	router, repo := SetupTestRouter()
	ctx := t.Context()

	alice := RegisterUser(t, router, "alice", "s3cret")
	bob := RegisterUser(t, router, "bob", "pa55word")

	listingID := CreateListingViaForm(t, router, repo, alice, "gilded mirror", "10")

	listing, err := repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.Equal(t, 10.0, listing.Price)
	require.Zero(t, listing.BidCount)
	require.True(t, listing.Active)

	// Bob outbids the starting price.
	w := PostForm(t, router, "/detail/"+listingID, url.Values{"bid_price": {"15"}}, bob)
	require.Equal(t, http.StatusSeeOther, w.Code)

	listing, err = repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.Equal(t, 15.0, listing.Price)
	require.Equal(t, 1, listing.BidCount)

	// A lower bid is rejected and re-renders the detail page with the
	// field error; the listing stays untouched.
	w = PostForm(t, router, "/detail/"+listingID, url.Values{"bid_price": {"12"}}, bob)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Bid price must be larger than the current price.")

	listing, err = repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.Equal(t, 15.0, listing.Price)
	require.Equal(t, 1, listing.BidCount)

	// Watchlist toggle flips membership both ways.
	w = PostForm(t, router, "/detail/"+listingID, url.Values{"watchlist": {"toggle"}}, bob)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = Get(t, router, "/watchlist", bob)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "gilded mirror")

	w = PostForm(t, router, "/detail/"+listingID, url.Values{"watchlist": {"toggle"}}, bob)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = Get(t, router, "/watchlist", bob)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "gilded mirror")

	// Empty comments fail validation; real ones land on the page.
	w = PostForm(t, router, "/detail/"+listingID, url.Values{"content": {""}}, bob)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Comment cannot be empty.")

	w = PostForm(t, router, "/detail/"+listingID, url.Values{"content": {"what a mirror"}}, bob)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = Get(t, router, "/detail/"+listingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "what a mirror")
	require.Contains(t, w.Body.String(), "bob")

	// Only the owner may close. After closing, bids bounce.
	w = PostForm(t, router, "/close/"+listingID, nil, bob)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = PostForm(t, router, "/close/"+listingID, nil, alice)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/detail/"+listingID, w.Header().Get("Location"))

	listing, err = repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.False(t, listing.Active)

	w = PostForm(t, router, "/detail/"+listingID, url.Values{"bid_price": {"50"}}, bob)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "This auction is closed.")

	listing, err = repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.Equal(t, 15.0, listing.Price)
	require.Equal(t, 1, listing.BidCount)
}

func TestOwnerOnlyMutations(t *testing.T) {
	router, repo := SetupTestRouter()
	ctx := t.Context()

	alice := RegisterUser(t, router, "alice", "s3cret")
	mallory := RegisterUser(t, router, "mallory", "evil")

	listingID := CreateListingViaForm(t, router, repo, alice, "oak table", "25")

	form := url.Values{
		"title":       {"stolen table"},
		"start_price": {"1"},
	}

	// Non-owners get forbidden, not not-found.
	w := PostForm(t, router, "/update/"+listingID, form, mallory)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = Get(t, router, "/update/"+listingID, mallory)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = PostForm(t, router, "/delete/"+listingID, nil, mallory)
	require.Equal(t, http.StatusForbidden, w.Code)

	listing, err := repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.Equal(t, "oak table", listing.Title)

	// The owner can update and finally delete.
	w = PostForm(t, router, "/update/"+listingID, url.Values{
		"title":       {"oak dining table"},
		"description": {"seats six"},
		"start_price": {"25"},
		"category":    {"family"},
	}, alice)
	require.Equal(t, http.StatusSeeOther, w.Code)

	listing, err = repo.GetListing(ctx, listingID)
	require.NoError(t, err)
	require.Equal(t, "oak dining table", listing.Title)

	w = PostForm(t, router, "/delete/"+listingID, nil, alice)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	_, err = repo.GetListing(ctx, listingID)
	require.Error(t, err)
}

func TestAuthFlows(t *testing.T) {
	router, _ := SetupTestRouter()

	t.Run("register_then_login", func(t *testing.T) {
		RegisterUser(t, router, "carol", "hunter2")

		w := PostForm(t, router, "/login", url.Values{
			"username": {"carol"},
			"password": {"hunter2"},
		}, nil)
		require.Equal(t, http.StatusSeeOther, w.Code)
		sessionCookie(t, w)
	})

	t.Run("wrong_password_generic_message", func(t *testing.T) {
		w := PostForm(t, router, "/login", url.Values{
			"username": {"carol"},
			"password": {"wrong"},
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Invalid username and/or password.")
	})

	t.Run("unknown_user_same_message", func(t *testing.T) {
		w := PostForm(t, router, "/login", url.Values{
			"username": {"nobody"},
			"password": {"whatever"},
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Invalid username and/or password.")
	})

	t.Run("duplicate_username_rejected", func(t *testing.T) {
		w := PostForm(t, router, "/register", url.Values{
			"username":     {"carol"},
			"email":        {"carol2@example.com"},
			"password":     {"abc"},
			"confirmation": {"abc"},
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Username already taken.")
	})

	t.Run("password_mismatch_rejected", func(t *testing.T) {
		w := PostForm(t, router, "/register", url.Values{
			"username":     {"dave"},
			"email":        {"dave@example.com"},
			"password":     {"abc"},
			"confirmation": {"xyz"},
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Passwords must match.")

		// Mismatch must not have created the account.
		w = PostForm(t, router, "/login", url.Values{
			"username": {"dave"},
			"password": {"abc"},
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Invalid username and/or password.")
	})

	t.Run("anonymous_create_redirects_to_login", func(t *testing.T) {
		w := Get(t, router, "/create", nil)
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("anonymous_watchlist_redirects_to_login", func(t *testing.T) {
		w := Get(t, router, "/watchlist", nil)
		require.Equal(t, http.StatusFound, w.Code)
	})
}

func TestBrowsingAndPagination(t *testing.T) {
	router, repo := SetupTestRouter()

	alice := RegisterUser(t, router, "alice", "s3cret")
	for _, title := range []string{"lamp", "vase", "chair", "rug", "clock", "mirror", "desk"} {
		CreateListingViaForm(t, router, repo, alice, title, "5")
	}

	// Seven active listings and a page size of six leave one on page two.
	w := Get(t, router, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Page 1 of 2")

	w = Get(t, router, "/?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Page 2 of 2")

	t.Run("profile_filter", func(t *testing.T) {
		w := Get(t, router, "/profile/alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Listings by alice")

		w = Get(t, router, "/profile/nobody", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "No listings found.")
	})

	t.Run("category_filter", func(t *testing.T) {
		w := Get(t, router, "/c/personal", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "desk")

		w = Get(t, router, "/c/family", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "No listings in this category.")
	})

	t.Run("detail_not_found", func(t *testing.T) {
		w := Get(t, router, "/detail/no-such-listing", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
