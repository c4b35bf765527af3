package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"offer-catalog-api/internal/cache"
	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/events"
	"offer-catalog-api/internal/features"
	"offer-catalog-api/internal/models"
	"offer-catalog-api/internal/validation"
	"offer-catalog-api/internal/week"
)

// ErrConflict is reserved for a future stricter reorder implementation. The
// index-normalizing reorder below cannot trigger it.
var ErrConflict = fmt.Errorf("service: concurrent reorder conflict")

const defaultCacheTTL = 5 * time.Minute

// Service implements the catalog's business rules on top of the persistence
// layer: activation, current-offer selection, default field derivation, and
// the reorder transaction.
type Service struct {
	db       *database.DB
	cache    cache.Cache
	events   *events.Manager
	flags    *features.Manager
	clock    week.Clock
	cacheTTL time.Duration
}

// Options holds the optional collaborators of a Service. Zero values are
// replaced with working defaults; a nil Cache disables caching entirely.
type Options struct {
	Cache    cache.Cache
	Events   *events.Manager
	Flags    *features.Manager
	Clock    week.Clock
	CacheTTL time.Duration
}

// NewService creates a catalog service.
func NewService(db *database.DB, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = week.SystemClock{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	return &Service{
		db:       db,
		cache:    opts.Cache,
		events:   opts.Events,
		flags:    opts.Flags,
		clock:    opts.Clock,
		cacheTTL: opts.CacheTTL,
	}
}

// CreateOffer validates and persists a new offer. Omitted week/year default
// to the current ISO week; an omitted sort_order appends the offer after the
// current maximum index so new offers sort last.
func (s *Service) CreateOffer(ctx context.Context, in models.OfferCreate) (models.Offer, error) {
	in.ProductName = validation.SanitizeString(in.ProductName)
	in.Category = validation.SanitizeString(in.Category)
	in.Unit = validation.SanitizeString(in.Unit)

	if err := validation.ValidateOfferCreate(in); err != nil {
		return models.Offer{}, err
	}

	now := s.clock.Now()
	weekNumber, year := week.Of(now)
	if in.WeekNumber != nil {
		weekNumber = *in.WeekNumber
		year = *in.Year
	}

	sortOrder := 0
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	} else {
		count, err := s.db.CountOffers(ctx)
		if err != nil {
			return models.Offer{}, fmt.Errorf("failed to derive sort order: %w", err)
		}
		sortOrder = count
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	unit := in.Unit
	if unit == "" {
		unit = "st"
	}

	offer := models.Offer{
		ID:            uuid.New().String(),
		ProductName:   in.ProductName,
		Category:      in.Category,
		Unit:          unit,
		OfferPrice:    in.OfferPrice,
		OriginalPrice: in.OriginalPrice,
		ImageURL:      in.ImageURL,
		WeekNumber:    weekNumber,
		Year:          year,
		IsActive:      isActive,
		SortOrder:     sortOrder,
		MultiBuy:      in.MultiBuy,
		IsBestPrice:   in.IsBestPrice,
		CreatedAt:     now,
	}

	if err := s.db.CreateOffer(ctx, offer); err != nil {
		return models.Offer{}, err
	}

	s.invalidateCurrent(ctx)
	s.publish(ctx, events.OfferCreated, offer)

	return offer, nil
}

// GetOffer returns one offer by id.
func (s *Service) GetOffer(ctx context.Context, id string) (models.Offer, error) {
	offer, err := s.db.GetOffer(ctx, id)
	if err != nil {
		return models.Offer{}, err
	}
	return *offer, nil
}

// UpdateOffer applies a partial merge: fields absent from the patch are left
// untouched. Returns database.ErrNotFound for an unknown id, with no side
// effects.
func (s *Service) UpdateOffer(ctx context.Context, id string, patch models.OfferPatch) (models.Offer, error) {
	if patch.ProductName != nil {
		name := validation.SanitizeString(*patch.ProductName)
		patch.ProductName = &name
	}
	if patch.Category != nil {
		category := validation.SanitizeString(*patch.Category)
		patch.Category = &category
	}
	if patch.Unit != nil {
		unit := validation.SanitizeString(*patch.Unit)
		patch.Unit = &unit
	}

	if err := validation.ValidateOfferPatch(patch); err != nil {
		return models.Offer{}, err
	}

	if err := s.db.UpdateOffer(ctx, id, patch); err != nil {
		return models.Offer{}, err
	}

	updated, err := s.db.GetOffer(ctx, id)
	if err != nil {
		return models.Offer{}, err
	}

	s.invalidateCurrent(ctx)
	s.publish(ctx, events.OfferUpdated, *updated)

	return *updated, nil
}

// DeleteOffer removes an offer permanently. There is no soft delete.
func (s *Service) DeleteOffer(ctx context.Context, id string) error {
	if err := s.db.DeleteOffer(ctx, id); err != nil {
		return err
	}

	s.invalidateCurrent(ctx)
	s.publish(ctx, events.OfferDeleted, id)

	return nil
}

// SetActive toggles the activation flag and nothing else. It is the highest
// frequency admin action, so it gets its own operation instead of a generic
// patch at the call site.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (models.Offer, error) {
	return s.UpdateOffer(ctx, id, models.OfferPatch{IsActive: &active})
}

// ListAll returns offers sorted ascending by sort_order, ties broken by
// insertion order so the admin table is deterministic.
func (s *Service) ListAll(ctx context.Context, includeInactive bool) ([]models.Offer, error) {
	return s.db.ListOffers(ctx, database.OfferFilter{IncludeInactive: includeInactive})
}

// ListOffers is the admin listing with optional week/year narrowing.
func (s *Service) ListOffers(ctx context.Context, filter database.OfferFilter) ([]models.Offer, error) {
	return s.db.ListOffers(ctx, filter)
}

// ListCurrent returns the public projection: offers that are active AND
// scheduled for the present ISO week/year, in display order. Results may be
// served from cache; the TTL keeps staleness bounded far under the one-week
// scheduling granularity.
func (s *Service) ListCurrent(ctx context.Context) ([]models.Offer, error) {
	weekNumber, year := week.Of(s.clock.Now())
	key := currentCacheKey(weekNumber, year)

	if s.cacheEnabled() {
		var cached []models.Offer
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			return cached, nil
		}
	}

	offers, err := s.db.ListOffers(ctx, database.OfferFilter{
		WeekNumber: &weekNumber,
		Year:       &year,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list current offers: %w", err)
	}

	if s.cacheEnabled() {
		// Best effort: a cache write failure never fails the read.
		_ = cache.SetJSON(ctx, s.cache, key, offers, s.cacheTTL)
	}

	return offers, nil
}

// Reorder swaps the display positions of two offers that are adjacent in
// the sorted listing. Every offer's sort_order is normalized to its 0-based
// listing index, with the pair's indices exchanged, so the operation
// converges even when historical rows carry duplicate or non-contiguous
// sort_order values, and every other offer keeps its relative position.
// Rows already at their target value are skipped; the rest commit as one
// atomic unit.
func (s *Service) Reorder(ctx context.Context, idA, idB string) error {
	if err := validation.ValidateReorderRequest(models.ReorderRequest{OfferIDA: idA, OfferIDB: idB}); err != nil {
		return err
	}

	offers, err := s.db.ListOffers(ctx, database.OfferFilter{IncludeInactive: true})
	if err != nil {
		return fmt.Errorf("failed to list offers for reorder: %w", err)
	}

	idxA, idxB := -1, -1
	for i, o := range offers {
		switch o.ID {
		case idA:
			idxA = i
		case idB:
			idxB = i
		}
	}

	if idxA < 0 || idxB < 0 {
		return database.ErrNotFound
	}
	if idxA-idxB != 1 && idxB-idxA != 1 {
		return &validation.ValidationError{
			Field:   "offer_id_b",
			Message: "offers must be adjacent in the current display order",
		}
	}

	assignments := make([]database.SortAssignment, 0, len(offers))
	for i, o := range offers {
		target := i
		switch i {
		case idxA:
			target = idxB
		case idxB:
			target = idxA
		}
		if o.SortOrder != target {
			assignments = append(assignments, database.SortAssignment{ID: o.ID, SortOrder: target})
		}
	}

	if err := s.db.ReassignSortOrders(ctx, assignments); err != nil {
		return err
	}

	s.invalidateCurrent(ctx)
	s.publish(ctx, events.OffersReordered, models.ReorderRequest{OfferIDA: idA, OfferIDB: idB})

	return nil
}

func (s *Service) cacheEnabled() bool {
	if s.cache == nil {
		return false
	}
	return s.flags == nil || s.flags.IsEnabled(features.CacheEnabled)
}

// invalidateCurrent drops the cached current-week projection. Every offer
// mutation can affect it (an off-week offer may have been moved into the
// current week), so this runs unconditionally after writes.
func (s *Service) invalidateCurrent(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	weekNumber, year := week.Of(s.clock.Now())
	_ = s.cache.Delete(ctx, currentCacheKey(weekNumber, year))
}

func (s *Service) publish(ctx context.Context, t events.Type, data interface{}) {
	if s.events == nil {
		return
	}
	if s.flags != nil && !s.flags.IsEnabled(features.EventsEnabled) {
		return
	}
	s.events.Publish(ctx, t, data)
}

func currentCacheKey(weekNumber, year int) string {
	return fmt.Sprintf("offers:current:%d-%02d", year, weekNumber)
}
