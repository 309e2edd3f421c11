package integrationtests

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	auction "github.com/dumbledor90/lumi-auctions-webapp/internal/auctionService"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/server"
	user "github.com/dumbledor90/lumi-auctions-webapp/internal/userService"
	"github.com/dumbledor90/lumi-auctions-webapp/services/auction/helpers"
)

const testSessionSecret = "integration-test-secret"

// SetupTestRouter initializes the router with an in-memory repository for
// integration testing. The repository is returned so tests can inspect
// persisted state directly.
func SetupTestRouter() (*gin.Engine, *repository.MemoryRepo) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	auctionSvc := auction.NewAuctionService(repo)
	userSvc := user.NewUserService(repo)
	router := server.SetupRouter(auctionSvc, userSvc, []byte(testSessionSecret), time.Hour)
	return router, repo
}

// PostForm submits an urlencoded form, optionally with a session cookie.
func PostForm(t *testing.T, router *gin.Engine, path string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Get performs a GET request, optionally with a session cookie.
func Get(t *testing.T, router *gin.Engine, path string, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// RegisterUser registers an account through the HTTP surface and returns
// the session cookie issued for it.
func RegisterUser(t *testing.T, router *gin.Engine, username, password string) *http.Cookie {
	t.Helper()
	w := PostForm(t, router, "/register", url.Values{
		"username":     {username},
		"email":        {username + "@example.com"},
		"password":     {password},
		"confirmation": {password},
	}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("registration of %s failed with status %d: %s", username, w.Code, w.Body.String())
	}
	return sessionCookie(t, w)
}

// sessionCookie extracts the session cookie from a response.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// CreateListingViaForm creates a listing through the HTTP surface and
// returns its ID, looked up from the repository.
func CreateListingViaForm(t *testing.T, router *gin.Engine, repo *repository.MemoryRepo, session *http.Cookie, title string, price string) string {
	t.Helper()
	w := PostForm(t, router, "/create", url.Values{
		"title":       {title},
		"description": {"integration test listing"},
		"start_price": {price},
		"category":    {"personal"},
	}, session)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create listing failed with status %d: %s", w.Code, w.Body.String())
	}

	listings, _, err := repo.ListListings(t.Context(), repository.ListingFilter{ActiveOnly: true}, 100, 0)
	if err != nil {
		t.Fatalf("list listings: %v", err)
	}
	for _, l := range listings {
		if l.Title == title {
			return l.ListingID
		}
	}
	t.Fatalf("listing %q not found after create", title)
	return ""
}
