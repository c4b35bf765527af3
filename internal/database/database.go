package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"offer-catalog-api/internal/models"
)

// ErrNotFound is returned when an operation references a row that does not
// exist. Callers distinguish it from genuine storage failures.
var ErrNotFound = fmt.Errorf("database: record not found")

// DB wraps the database connection and provides methods for data access. No
// business rules live here; it is the persistence boundary only.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// initSchema creates the necessary tables if they don't exist.
func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS offers (
			id TEXT PRIMARY KEY,
			product_name TEXT NOT NULL,
			category TEXT NOT NULL,
			unit TEXT NOT NULL DEFAULT 'st',
			offer_price REAL NOT NULL,
			original_price REAL,
			image_url TEXT,
			week_number INTEGER NOT NULL,
			year INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			sort_order INTEGER NOT NULL DEFAULT 0,
			multi_buy TEXT,
			is_best_price INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			message TEXT NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS newsletter_subscriptions (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			is_active INTEGER NOT NULL DEFAULT 1,
			subscribed_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			image_url TEXT,
			icon TEXT NOT NULL DEFAULT 'Package'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_week_year ON offers(week_number, year)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_is_active ON offers(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_sort_order ON offers(sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// OfferFilter narrows an offer listing. The zero value lists active offers
// only, in display order.
type OfferFilter struct {
	IncludeInactive bool
	WeekNumber      *int
	Year            *int
}

const offerColumns = `id, product_name, category, unit, offer_price, original_price,
	image_url, week_number, year, is_active, sort_order, multi_buy, is_best_price, created_at`

// CreateOffer inserts a fully-populated offer. The write is durable before
// the call returns.
func (db *DB) CreateOffer(ctx context.Context, offer models.Offer) error {
	query := `INSERT INTO offers (
		id, product_name, category, unit, offer_price, original_price,
		image_url, week_number, year, is_active, sort_order, multi_buy,
		is_best_price, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		offer.ID,
		offer.ProductName,
		offer.Category,
		offer.Unit,
		offer.OfferPrice,
		nullFloat(offer.OriginalPrice),
		nullString(offer.ImageURL),
		offer.WeekNumber,
		offer.Year,
		offer.IsActive,
		offer.SortOrder,
		nullString(offer.MultiBuy),
		offer.IsBestPrice,
		offer.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}

	return nil
}

// GetOffer returns a single offer by id, or ErrNotFound.
func (db *DB) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`, id)

	offer, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// UpdateOffer applies a partial update. Only the fields present in the patch
// are written; absent fields are left untouched. Returns ErrNotFound if no
// offer has the given id.
func (db *DB) UpdateOffer(ctx context.Context, id string, patch models.OfferPatch) error {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.ProductName != nil {
		set("product_name", *patch.ProductName)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Unit != nil {
		set("unit", *patch.Unit)
	}
	if patch.OfferPrice != nil {
		set("offer_price", *patch.OfferPrice)
	}
	if patch.OriginalPrice != nil {
		set("original_price", *patch.OriginalPrice)
	}
	if patch.ImageURL != nil {
		set("image_url", nullString(*patch.ImageURL))
	}
	if patch.WeekNumber != nil {
		set("week_number", *patch.WeekNumber)
	}
	if patch.Year != nil {
		set("year", *patch.Year)
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}
	if patch.SortOrder != nil {
		set("sort_order", *patch.SortOrder)
	}
	if patch.MultiBuy != nil {
		set("multi_buy", nullString(*patch.MultiBuy))
	}
	if patch.IsBestPrice != nil {
		set("is_best_price", *patch.IsBestPrice)
	}

	if len(sets) == 0 {
		return fmt.Errorf("no fields to update")
	}

	args = append(args, id)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE offers SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteOffer removes an offer permanently. Returns ErrNotFound if absent.
func (db *DB) DeleteOffer(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListOffers returns offers matching the filter, sorted ascending by
// sort_order. Ties are broken by insertion order (rowid) so repeated listings
// are deterministic even when historical sort_order values collide.
func (db *DB) ListOffers(ctx context.Context, filter OfferFilter) ([]models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE 1=1`
	var args []interface{}

	if !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	if filter.WeekNumber != nil {
		query += ` AND week_number = ?`
		args = append(args, *filter.WeekNumber)
	}
	if filter.Year != nil {
		query += ` AND year = ?`
		args = append(args, *filter.Year)
	}

	query += ` ORDER BY sort_order ASC, rowid ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// CountOffers returns the total number of offers, inactive included.
func (db *DB) CountOffers(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return count, nil
}

// SortAssignment pins one offer to a display position.
type SortAssignment struct {
	ID        string
	SortOrder int
}

// ReassignSortOrders writes a set of sort_order values as a single atomic
// unit. Either every assignment commits or none does, so a crash or a
// concurrent reorder cannot leave the catalog with half a move applied.
// Returns ErrNotFound if any assigned offer is missing.
func (db *DB) ReassignSortOrders(ctx context.Context, assignments []SortAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE offers SET sort_order = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare sort order update: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		result, err := stmt.ExecContext(ctx, a.SortOrder, a.ID)
		if err != nil {
			return fmt.Errorf("failed to update sort order for %s: %w", a.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check sort order update: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sort order reassignment: %w", err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanOffer.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(s scanner) (*models.Offer, error) {
	var offer models.Offer
	var originalPrice sql.NullFloat64
	var imageURL, multiBuy sql.NullString
	var createdAt string

	err := s.Scan(
		&offer.ID,
		&offer.ProductName,
		&offer.Category,
		&offer.Unit,
		&offer.OfferPrice,
		&originalPrice,
		&imageURL,
		&offer.WeekNumber,
		&offer.Year,
		&offer.IsActive,
		&offer.SortOrder,
		&multiBuy,
		&offer.IsBestPrice,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if originalPrice.Valid {
		v := originalPrice.Float64
		offer.OriginalPrice = &v
	}
	offer.ImageURL = imageURL.String
	offer.MultiBuy = multiBuy.String

	offer.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &offer, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
