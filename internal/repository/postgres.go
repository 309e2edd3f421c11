package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dumbledor90/lumi-auctions-webapp/internal/auctionerrors"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/dbx"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/migrations"
	model "github.com/dumbledor90/lumi-auctions-webapp/internal/models"
)

// PostgresRepo is the production AuctionDB backed by PostgreSQL via the pgx
// stdlib driver. Bid acceptance locks the listing row, so concurrent bids
// against one listing are serialized by the database.
type PostgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo opens a connection pool for the given DSN.
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &PostgresRepo{db: db}, nil
}

// RunMigrations applies the embedded goose migrations.
func (r *PostgresRepo) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, r.db, ".")
}

// Close releases the connection pool.
func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

func (r *PostgresRepo) CreateUser(ctx context.Context, user model.User) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`,
		user.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if exists {
		return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrUsernameTaken)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.UserID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		// The unique index still guards against a concurrent insert.
		if strings.Contains(err.Error(), "users_username_lower_idx") {
			return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrUsernameTaken)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	user := model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE lower(username) = lower($1)`,
		username).Scan(&user.UserID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("get user %s: %w", username, auctionerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepo) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	user := model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		userID).Scan(&user.UserID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepo) CreateListing(ctx context.Context, l model.Listing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings
		     (id, owner_id, title, description, start_price, price, bid_count,
		      image_url, category, active, created_at, updated_at, last_bid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ListingID, l.OwnerID, l.Title, l.Description, l.StartPrice, l.Price, l.BidCount,
		l.ImageURL, l.Category, l.Active, l.CreatedAt, l.UpdatedAt, l.LastBidAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const listingColumns = `id, owner_id, title, description, start_price, price, bid_count,
	image_url, category, active, created_at, updated_at, last_bid_at`

func scanListing(row interface{ Scan(...any) error }) (model.Listing, error) {
	l := model.Listing{}
	err := row.Scan(&l.ListingID, &l.OwnerID, &l.Title, &l.Description, &l.StartPrice,
		&l.Price, &l.BidCount, &l.ImageURL, &l.Category, &l.Active,
		&l.CreatedAt, &l.UpdatedAt, &l.LastBidAt)
	return l, err
}

func (r *PostgresRepo) GetListing(ctx context.Context, listingID string) (model.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, listingID)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
		}
		return model.Listing{}, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepo) UpdateListing(ctx context.Context, l model.Listing) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET
		     title = $2, description = $3, start_price = $4, image_url = $5,
		     category = $6, updated_at = now()
		 WHERE id = $1`,
		l.ListingID, l.Title, l.Description, l.StartPrice, l.ImageURL, l.Category)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update listing %s: %w", l.ListingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

// DeleteListing removes the listing and, through the schema's cascading
// foreign keys, its bids, comments, and watchlist rows in one transaction.
func (r *PostgresRepo) DeleteListing(ctx context.Context, listingID string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, q := range []string{
			`DELETE FROM bids WHERE listing_id = $1`,
			`DELETE FROM comments WHERE listing_id = $1`,
			`DELETE FROM watchlist WHERE listing_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, listingID); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, listingID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
		}
		return nil
	})
}

func (r *PostgresRepo) CloseListing(ctx context.Context, listingID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET active = false, updated_at = now()
		 WHERE id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

func (r *PostgresRepo) ListListings(ctx context.Context, filter ListingFilter, limit, offset int) ([]model.Listing, int, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.ActiveOnly {
		where = append(where, "l.active")
	}
	if filter.OwnerUsername != "" {
		args = append(args, filter.OwnerUsername)
		where = append(where, fmt.Sprintf(
			"l.owner_id = (SELECT id FROM users WHERE lower(username) = lower($%d))", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("l.category = $%d", len(args)))
	}
	if filter.WatchedBy != "" {
		args = append(args, filter.WatchedBy)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM watchlist w WHERE w.listing_id = l.id AND w.user_id = $%d)", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM listings l`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM listings l%s ORDER BY l.last_bid_at DESC LIMIT $%d OFFSET $%d`,
		listingColumns, clause, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	listings := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return listings, total, nil
}

// RecordBidForListing accepts a bid inside one transaction: the listing row
// is locked before the price comparison, then the bid row and the listing's
// price, bid count, and last-bid timestamp are written together.
func (r *PostgresRepo) RecordBidForListing(ctx context.Context, bid model.Bid) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var price float64
		var active bool
		err := tx.QueryRowContext(ctx,
			`SELECT price, active FROM listings WHERE id = $1 FOR UPDATE`,
			bid.ListingID).Scan(&price, &active)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
			}
			return fmt.Errorf("db error: %w", err)
		}
		if !active {
			return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingClosed)
		}
		if bid.Amount <= price {
			return fmt.Errorf("record bid for listing %s: %w - current price is %.2f",
				bid.ListingID, auctionerrors.ErrBidTooLow, price)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO bids (id, listing_id, user_id, amount, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			bid.BidID, bid.ListingID, bid.UserID, bid.Amount, bid.CreatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE listings SET
			     price = $2, bid_count = bid_count + 1, last_bid_at = $3, updated_at = $3
			 WHERE id = $1`,
			bid.ListingID, bid.Amount, bid.CreatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepo) GetBidsByListing(ctx context.Context, listingID string) ([]model.Bid, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, listing_id, user_id, amount, created_at FROM bids
		 WHERE listing_id = $1 ORDER BY created_at DESC`, listingID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		b := model.Bid{}
		if err := rows.Scan(&b.BidID, &b.ListingID, &b.UserID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return bids, nil
}

// ToggleWatchlist flips membership inside a transaction so two rapid
// toggles cannot end up inserting a duplicate row.
func (r *PostgresRepo) ToggleWatchlist(ctx context.Context, userID, listingID string) (bool, error) {
	var watching bool
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM watchlist WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			watching = false
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO watchlist (user_id, listing_id) VALUES ($1, $2)`, userID, listingID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		watching = true
		return nil
	})
	return watching, err
}

func (r *PostgresRepo) InWatchlist(ctx context.Context, userID, listingID string) (bool, error) {
	var watching bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND listing_id = $2)`,
		userID, listingID).Scan(&watching)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return watching, nil
}

func (r *PostgresRepo) CreateComment(ctx context.Context, c model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, listing_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.CommentID, c.ListingID, c.UserID, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetCommentsByListing(ctx context.Context, listingID string) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.listing_id, c.user_id, u.username, c.content, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.listing_id = $1 ORDER BY c.created_at DESC`, listingID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c := model.Comment{}
		if err := rows.Scan(&c.CommentID, &c.ListingID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return comments, nil
}
