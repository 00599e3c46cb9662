// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/models"
	"github.com/danielhkuo/quickly-spin/places"
)

// Nearby search limits, in kilometers
const (
	DefaultRadiusKm  = 5.0
	MinRadiusKm      = 1.0
	MaxRadiusKm      = 20.0
	DefaultMinRating = 4.0
	photoMaxWidth    = 400
)

// NearbyFinder looks up restaurants around a point
type NearbyFinder interface {
	Enabled() bool
	Nearby(ctx context.Context, q places.NearbyQuery) ([]places.Restaurant, error)
	PhotoURL(photoReference string, maxWidth int) string
}

type RestaurantHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	finder NearbyFinder
}

func NewRestaurantHandler(db *sql.DB, cfg cliparse.Config, finder NearbyFinder) *RestaurantHandler {
	return &RestaurantHandler{db: db, cfg: cfg, finder: finder}
}

// Nearby handles GET /restaurants/nearby
// Searches around lat/lng, caches the results and returns them sorted by distance
func (h *RestaurantHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || !places.ValidCoordinate(lat, lng) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "lat and lng must be valid coordinates")
		return
	}

	radiusKm, err := floatParam(q.Get("radius_km"), DefaultRadiusKm)
	if err != nil || radiusKm < MinRadiusKm || radiusKm > MaxRadiusKm {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("radius_km must be between %g and %g", MinRadiusKm, MaxRadiusKm))
		return
	}

	minRating, err := floatParam(q.Get("min_rating"), DefaultMinRating)
	if err != nil || minRating < 0 || minRating > 5 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "min_rating must be between 0 and 5")
		return
	}

	filter, err := places.NewFilter(q.Get("q"), radiusKm, q.Get("where"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.finder == nil || !h.finder.Enabled() {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "nearby search is not configured")
		return
	}

	ctx := r.Context()
	found, err := h.finder.Nearby(ctx, places.NearbyQuery{
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: places.RadiusMeters(radiusKm),
		MinRating:    minRating,
	})
	switch {
	case errors.Is(err, places.ErrNoResults):
		middleware.JSONResponse(w, http.StatusOK, models.NearbyResponse{Restaurants: []models.Restaurant{}})
		return
	case errors.Is(err, places.ErrUpstream):
		slog.Warn("nearby search failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "places service unavailable")
		return
	case err != nil:
		slog.Error("nearby search failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "nearby search failed")
		return
	}

	if err := h.cache(ctx, found); err != nil {
		// Results are still useful even if caching failed
		slog.Error("failed to cache restaurants", "error", err)
	}

	scored, err := filter.Apply(places.Point{Lat: lat, Lng: lng}, found)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make([]models.Restaurant, 0, len(scored))
	for _, s := range scored {
		m := toRestaurantModel(s.Restaurant)
		d := s.DistanceKm
		m.DistanceKm = &d
		out = append(out, m)
	}

	slog.Info("nearby search", "fetched", len(found), "returned", len(out), "radius_km", radiusKm)

	middleware.JSONResponse(w, http.StatusOK, models.NearbyResponse{
		Restaurants: out,
		Count:       len(out),
	})
}

// Get handles GET /restaurants/{id}
// Returns the restaurant with its photo and map links, plus the caller's
// saved flags when a session is present
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	rest, err := loadRestaurant(ctx, h.db, id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "restaurant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query restaurant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	detail := models.RestaurantDetail{
		Restaurant: toRestaurantModel(rest),
		Directions: places.DirectionsFor(rest),
	}
	if h.finder != nil {
		detail.PhotoURL = h.finder.PhotoURL(rest.PhotoReference, photoMaxWidth)
	}

	// Saved flags are optional; an anonymous request just doesn't get them
	if user, err := authenticate(ctx, h.db, h.cfg, r); err == nil {
		flags, err := loadSavedFlags(ctx, h.db, user.ID, id)
		if err != nil {
			slog.Error("failed to load saved flags", "error", err)
		}
		detail.Saved = flags
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// cache upserts fetched restaurants so they can be favorited and spun later
func (h *RestaurantHandler) cache(ctx context.Context, found []places.Restaurant) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, rest := range found {
		if err := upsertRestaurant(ctx, tx, rest, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertRestaurant(ctx context.Context, ex execer, rest places.Restaurant, now time.Time) error {
	var photo sql.NullString
	if rest.PhotoReference != "" {
		photo = sql.NullString{String: rest.PhotoReference, Valid: true}
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO restaurant (id, name, rating, address, latitude, longitude, price_level, photo_reference, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rating = EXCLUDED.rating,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			price_level = EXCLUDED.price_level,
			photo_reference = EXCLUDED.photo_reference,
			fetched_at = EXCLUDED.fetched_at
	`, rest.ID, rest.Name, rest.Rating, rest.Address, rest.Latitude, rest.Longitude, rest.PriceLevel, photo, now)
	if err != nil {
		return fmt.Errorf("failed to upsert restaurant %s: %w", rest.ID, err)
	}
	return nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const restaurantColumns = `r.id, r.name, r.rating, r.address, r.latitude, r.longitude, r.price_level, r.photo_reference`

func scanRestaurant(s rowScanner, extra ...any) (places.Restaurant, error) {
	var rest places.Restaurant
	var photo sql.NullString
	dest := []any{&rest.ID, &rest.Name, &rest.Rating, &rest.Address, &rest.Latitude, &rest.Longitude, &rest.PriceLevel, &photo}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return places.Restaurant{}, err
	}
	rest.PhotoReference = photo.String
	return rest, nil
}

// loadRestaurant returns sql.ErrNoRows for unknown IDs
func loadRestaurant(ctx context.Context, ex execer, id string) (places.Restaurant, error) {
	row := ex.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurant r WHERE r.id = $1`, id)
	return scanRestaurant(row)
}

func toRestaurantModel(rest places.Restaurant) models.Restaurant {
	return models.Restaurant{
		ID:             rest.ID,
		Name:           rest.Name,
		Rating:         rest.Rating,
		Address:        rest.Address,
		Latitude:       rest.Latitude,
		Longitude:      rest.Longitude,
		PriceLevel:     rest.PriceLevel,
		PriceLabel:     places.PriceLabel(rest.PriceLevel, "$"),
		PhotoReference: rest.PhotoReference,
	}
}

// floatParam parses an optional query value. NaN and infinities are
// rejected since they slip past range checks.
func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}
