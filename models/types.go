package models

import (
	"time"

	"github.com/danielhkuo/quickly-spin/places"
	"github.com/danielhkuo/quickly-spin/wheel"
)

// Spin status constants
const (
	SpinStatusSpinning  = "spinning"
	SpinStatusSettled   = "settled"
	SpinStatusCancelled = "cancelled"
)

// History sources
const (
	SourceManual = "manual"
	SourceWheel  = "wheel"
)

// Request types

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RatingRequest struct {
	Rating int `json:"rating"`
}

type AddHistoryRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Rating       *int   `json:"rating,omitempty"`
	Note         string `json:"note,omitempty"`
}

type StartSpinRequest struct {
	RestaurantIDs []string `json:"restaurant_ids"`
}

// Response types

type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

type MeResponse struct {
	User  User      `json:"user"`
	Stats UserStats `json:"stats"`
}

type NearbyResponse struct {
	Restaurants []Restaurant `json:"restaurants"`
	Count       int          `json:"count"`
}

type RestaurantDetail struct {
	Restaurant Restaurant        `json:"restaurant"`
	PhotoURL   string            `json:"photo_url,omitempty"`
	Directions places.Directions `json:"directions"`
	Saved      *SavedFlags       `json:"saved,omitempty"`
}

type FavoritesResponse struct {
	Restaurants []SavedRestaurant `json:"restaurants"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type WheelStateResponse struct {
	IsSpinning      bool             `json:"is_spinning"`
	CurrentRotation float64          `json:"current_rotation"`
	SelectedIndex   *int             `json:"selected_index"`
	Selected        *wheel.Candidate `json:"selected,omitempty"`
	ActiveSpinID    *string          `json:"active_spin_id,omitempty"`
}

type AutoSelectResponse struct {
	AutoSelected  bool            `json:"auto_selected"`
	SelectedIndex int             `json:"selected_index"`
	Selected      wheel.Candidate `json:"selected"`
}

type StartSpinResponse struct {
	SpinID     string            `json:"spin_id"`
	Plan       wheel.SpinPlan    `json:"plan"`
	DurationMS int64             `json:"duration_ms"`
	Signals    []SignalView      `json:"signals"`
	Candidates []wheel.Candidate `json:"candidates"`
	StartedAt  time.Time         `json:"started_at"`
	SettlesAt  time.Time         `json:"settles_at"`
}

type SpinResponse struct {
	SpinID        string            `json:"spin_id"`
	Status        string            `json:"status"`
	Plan          wheel.SpinPlan    `json:"plan"`
	Candidates    []wheel.Candidate `json:"candidates"`
	StartedAt     time.Time         `json:"started_at"`
	SettlesAt     time.Time         `json:"settles_at"`
	RemainingMS   int64             `json:"remaining_ms"`
	SelectedIndex *int              `json:"selected_index"`
	Selected      *wheel.Candidate  `json:"selected,omitempty"`
	ResolvedAt    *time.Time        `json:"resolved_at,omitempty"`
}

// SignalView is a feedback signal with its offset in milliseconds.
type SignalView struct {
	OffsetMS int64            `json:"offset_ms"`
	Kind     wheel.SignalKind `json:"kind"`
}

// Domain types

type User struct {
	ID        string    `json:"id"`
	Email     *string   `json:"email,omitempty"`
	Name      string    `json:"name"`
	IsGuest   bool      `json:"is_guest"`
	CreatedAt time.Time `json:"created_at"`
}

type UserStats struct {
	Favorites int `json:"favorites"`
	Visited   int `json:"visited"`
	Rated     int `json:"rated"`
	History   int `json:"history"`
}

type Restaurant struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Rating         float64  `json:"rating"`
	Address        string   `json:"address"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	PriceLevel     int      `json:"price_level"`
	PriceLabel     string   `json:"price_label"`
	PhotoReference string   `json:"photo_reference,omitempty"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
}

// SavedFlags is one user's relation to a restaurant.
type SavedFlags struct {
	IsFavorite bool      `json:"is_favorite"`
	IsVisited  bool      `json:"is_visited"`
	UserRating *int      `json:"user_rating"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SavedRestaurant struct {
	Restaurant Restaurant `json:"restaurant"`
	SavedFlags
}

type HistoryEntry struct {
	ID             string    `json:"id"`
	RestaurantID   string    `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Source         string    `json:"source"`
	Rating         *int      `json:"rating"`
	Note           string    `json:"note,omitempty"`
	VisitedAt      time.Time `json:"visited_at"`
	VisitedAgo     string    `json:"visited_ago"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
