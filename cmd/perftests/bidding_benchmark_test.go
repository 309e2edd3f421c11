package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	auction "github.com/dumbledor90/lumi-auctions-webapp/internal/auctionService"
	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

func seedListing(b *testing.B, repo *repository.MemoryRepo, id string, price float64) {
	b.Helper()
	now := time.Now().UTC()
	err := repo.CreateListing(context.Background(), model.Listing{
		ListingID:  id,
		OwnerID:    utils.GenerateID(),
		Title:      "benchmark listing " + id,
		StartPrice: price,
		Price:      price,
		Category:   model.CategoryUncategorized,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
		LastBidAt:  now,
	})
	if err != nil {
		b.Fatalf("failed to seed listing: %v", err)
	}
}

// Benchmark 1: PlaceBid - Isolated Listings (Low Contention)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)
	ctx := context.Background()

	for i := 0; i < b.N; i++ {
		seedListing(b, repo, fmt.Sprintf("listing_%d", i), 50)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		listingID := fmt.Sprintf("listing_%d", i)
		amount := float64(51 + rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, listingID, userID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Listing (High Contention)
func Benchmark_PlaceBid_ConcurrentSharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)
	ctx := context.Background()

	seedListing(b, repo, "shared_listing_1", 50)

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())

			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, "shared_listing_1", userID, float64(nextBid))
		}
	})
}

// Benchmark 3: BrowseListings over a populated store
func Benchmark_BrowseListings(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		seedListing(b, repo, fmt.Sprintf("listing_%d", i), 10)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		page := 1 + i%10
		if _, err := svc.BrowseListings(ctx, repository.ListingFilter{ActiveOnly: true}, page); err != nil {
			b.Fatalf("failed to browse listings: %v", err)
		}
	}
}
