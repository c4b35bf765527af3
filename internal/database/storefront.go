package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"offer-catalog-api/internal/models"
)

// CreateAdmin inserts an administrator account.
func (db *DB) CreateAdmin(ctx context.Context, admin models.AdminUser) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns an admin account, or ErrNotFound.
func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return db.getAdmin(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`, username)
}

// GetAdminByID returns an admin account, or ErrNotFound.
func (db *DB) GetAdminByID(ctx context.Context, id string) (*models.AdminUser, error) {
	return db.getAdmin(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE id = ?`, id)
}

func (db *DB) getAdmin(ctx context.Context, query string, arg interface{}) (*models.AdminUser, error) {
	var admin models.AdminUser
	var createdAt string

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	admin.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &admin, nil
}

// CountAdmins returns the number of administrator accounts.
func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// InsertContactMessage stores a contact form submission.
func (db *DB) InsertContactMessage(ctx context.Context, msg models.ContactMessage) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, phone, message, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, nullString(msg.Phone), msg.Message, msg.IsRead,
		msg.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns stored messages, newest first.
func (db *DB) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, email, phone, message, is_read, created_at
		 FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ContactMessage
	for rows.Next() {
		var msg models.ContactMessage
		var phone sql.NullString
		var createdAt string

		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &phone, &msg.Message, &msg.IsRead, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		msg.Phone = phone.String
		msg.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}

	return messages, nil
}

// GetSubscriptionByEmail returns a newsletter subscription, or ErrNotFound.
func (db *DB) GetSubscriptionByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	var subscribedAt string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, is_active, subscribed_at FROM newsletter_subscriptions WHERE email = ?`,
		email).Scan(&sub.ID, &sub.Email, &sub.IsActive, &subscribedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub.SubscribedAt, err = time.Parse(time.RFC3339, subscribedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subscribed_at: %w", err)
	}

	return &sub, nil
}

// InsertSubscription stores a new newsletter subscription.
func (db *DB) InsertSubscription(ctx context.Context, sub models.NewsletterSubscription) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO newsletter_subscriptions (id, email, is_active, subscribed_at) VALUES (?, ?, ?, ?)`,
		sub.ID, sub.Email, sub.IsActive, sub.SubscribedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// ReactivateSubscription re-enables a previously unsubscribed email.
func (db *DB) ReactivateSubscription(ctx context.Context, email string, at time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE newsletter_subscriptions SET is_active = 1, subscribed_at = ? WHERE email = ?`,
		at.UTC().Format(time.RFC3339), email)
	if err != nil {
		return fmt.Errorf("failed to reactivate subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check reactivation result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeactivateSubscription disables a subscription without deleting it, so a
// later signup is recognized as a returning subscriber.
func (db *DB) DeactivateSubscription(ctx context.Context, email string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE newsletter_subscriptions SET is_active = 0 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListActiveSubscribers returns active subscriptions, newest first.
func (db *DB) ListActiveSubscribers(ctx context.Context) ([]models.NewsletterSubscription, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, email, is_active, subscribed_at FROM newsletter_subscriptions
		 WHERE is_active = 1 ORDER BY subscribed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.NewsletterSubscription
	for rows.Next() {
		var sub models.NewsletterSubscription
		var subscribedAt string

		if err := rows.Scan(&sub.ID, &sub.Email, &sub.IsActive, &subscribedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.SubscribedAt, err = time.Parse(time.RFC3339, subscribedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse subscribed_at: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// InsertProduct stores a single inventory product.
func (db *DB) InsertProduct(ctx context.Context, p models.Product) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (id, name, category, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, nullString(p.Category), p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// InsertProducts stores multiple products in a single transaction.
func (db *DB) InsertProducts(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (id, name, category, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range products {
		_, err := stmt.ExecContext(ctx, p.ID, p.Name, nullString(p.Category),
			p.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return 0, fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// DeleteProduct removes a product. Returns ErrNotFound if absent.
func (db *DB) DeleteProduct(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
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

// DeleteAllProducts clears the inventory and returns how many rows went away.
func (db *DB) DeleteAllProducts(ctx context.Context) (int, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}

	return int(affected), nil
}

// ProductFilter narrows and pages an inventory listing.
type ProductFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ListProducts returns a page of products plus the total match count.
func (db *DB) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		where += ` AND name LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		where += ` AND category = ?`
		args = append(args, filter.Category)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT id, name, category, created_at FROM products` + where + ` ORDER BY name ASC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var category sql.NullString
		var createdAt string

		if err := rows.Scan(&p.ID, &p.Name, &category, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Category = category.String
		p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse created_at: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// ListProductCategories returns the distinct non-empty inventory categories.
func (db *DB) ListProductCategories(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT category FROM products WHERE category IS NOT NULL AND category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// ListCategories returns the storefront catalog sections.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, image_url, icon FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var imageURL sql.NullString

		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &imageURL, &c.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ImageURL = imageURL.String
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
