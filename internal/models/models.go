package models

import "time"

// Offer is a single promotional price listing, scoped to an ISO week/year.
type Offer struct {
	ID            string    `json:"id"`           // uuid, immutable
	ProductName   string    `json:"product_name"` // display name, non-empty
	Category      string    `json:"category"`     // one of the fixed catalog categories
	Unit          string    `json:"unit"`         // e.g. "st", "kg", "l", "förp"
	OfferPrice    float64   `json:"offer_price"`  // discounted price, > 0
	OriginalPrice *float64  `json:"original_price,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	WeekNumber    int       `json:"week_number"` // 1-53
	Year          int       `json:"year"`
	IsActive      bool      `json:"is_active"`
	SortOrder     int       `json:"sort_order"`          // manual display rank, lower = earlier
	MultiBuy      string    `json:"multi_buy,omitempty"` // e.g. "3 för 99"
	IsBestPrice   bool      `json:"is_best_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// OfferCreate is the request body for creating an offer. Pointer fields are
// optional: omitted week/year default to the current ISO week, an omitted
// sort_order appends the offer to the end of the catalog, and is_active
// defaults to true.
type OfferCreate struct {
	ProductName   string   `json:"product_name"`
	Category      string   `json:"category"`
	Unit          string   `json:"unit"`
	OfferPrice    float64  `json:"offer_price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	WeekNumber    *int     `json:"week_number,omitempty"`
	Year          *int     `json:"year,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	SortOrder     *int     `json:"sort_order,omitempty"`
	MultiBuy      string   `json:"multi_buy,omitempty"`
	IsBestPrice   bool     `json:"is_best_price,omitempty"`
}

// OfferPatch is a partial update. Every field carries an explicit presence
// indicator: nil means "leave untouched". This is what lets the admin UI send
// single-field updates such as an is_active toggle or a sort_order move.
type OfferPatch struct {
	ProductName   *string  `json:"product_name,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Unit          *string  `json:"unit,omitempty"`
	OfferPrice    *float64 `json:"offer_price,omitempty"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	WeekNumber    *int     `json:"week_number,omitempty"`
	Year          *int     `json:"year,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	SortOrder     *int     `json:"sort_order,omitempty"`
	MultiBuy      *string  `json:"multi_buy,omitempty"`
	IsBestPrice   *bool    `json:"is_best_price,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p OfferPatch) IsEmpty() bool {
	return p.ProductName == nil && p.Category == nil && p.Unit == nil &&
		p.OfferPrice == nil && p.OriginalPrice == nil && p.ImageURL == nil &&
		p.WeekNumber == nil && p.Year == nil && p.IsActive == nil &&
		p.SortOrder == nil && p.MultiBuy == nil && p.IsBestPrice == nil
}

// ReorderRequest asks to swap the display positions of two offers that are
// adjacent in the sorted listing.
type ReorderRequest struct {
	OfferIDA string `json:"offer_id_a"`
	OfferIDB string `json:"offer_id_b"`
}

// SetActiveRequest is the single-field activation toggle.
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// AdminUser is a privileged operator account.
type AdminUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the admin credential payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Category is a storefront catalog section.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Icon        string `json:"icon"`
}

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// ContactMessageCreate is the public contact form payload.
type ContactMessageCreate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// NewsletterSubscription is a stored newsletter signup.
type NewsletterSubscription struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
	IsActive     bool      `json:"is_active"`
}

// NewsletterSubscribe is the public signup payload.
type NewsletterSubscribe struct {
	Email string `json:"email"`
}

// Product is an inventory item, independent of any offer.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductCreate is the single-product creation payload.
type ProductCreate struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ProductBulkCreate creates many products from a list of names.
type ProductBulkCreate struct {
	Products []string `json:"products"`
	Category string   `json:"category,omitempty"`
}

// ProductPage is a paginated inventory listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// ChatQuery is a question for the storefront assistant.
type ChatQuery struct {
	Query string `json:"query"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	Found   bool   `json:"found"`
	Message string `json:"message"`
}

// MessageResponse is a generic human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
