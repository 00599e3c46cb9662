// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-spin/auth"
	"github.com/danielhkuo/quickly-spin/cliparse"
	"github.com/danielhkuo/quickly-spin/middleware"
	"github.com/danielhkuo/quickly-spin/models"
	"github.com/danielhkuo/quickly-spin/wheel"
)

var errSpinInFlight = errors.New("a spin is already in progress")

// WheelHandler keeps one wheel per user. Spins settle lazily: the first
// request that observes an expired spin resolves it.
type WheelHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	selector *wheel.Selector
	clock    wheel.Clock
}

func NewWheelHandler(db *sql.DB, cfg cliparse.Config, selector *wheel.Selector, clock wheel.Clock) *WheelHandler {
	if clock == nil {
		clock = wheel.SystemClock()
	}
	return &WheelHandler{db: db, cfg: cfg, selector: selector, clock: clock}
}

// wheelState mirrors a wheel_state row
type wheelState struct {
	rotation      float64
	activeSpinID  sql.NullString
	selectedIndex sql.NullInt64
	selectedID    sql.NullString
	selectedLabel sql.NullString
}

// spinRecord is a spin row together with its candidate snapshot
type spinRecord struct {
	id            string
	userID        string
	status        string
	plan          wheel.SpinPlan
	startedAt     time.Time
	settlesAt     time.Time
	selectedIndex sql.NullInt64
	resolvedAt    sql.NullTime
	candidates    []wheel.Candidate
}

// State handles GET /wheel
func (h *WheelHandler) State(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	state, err := h.currentState(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to load wheel state", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.WheelStateResponse{
		IsSpinning:      state.activeSpinID.Valid,
		CurrentRotation: state.rotation,
		SelectedIndex:   nullIntPtr(state.selectedIndex),
	}
	if state.activeSpinID.Valid {
		id := state.activeSpinID.String
		resp.ActiveSpinID = &id
	}
	if state.selectedID.Valid {
		resp.Selected = &wheel.Candidate{ID: state.selectedID.String, Label: state.selectedLabel.String}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// StartSpin handles POST /wheel/spins
// Zero candidates is the empty state, one is selected without a draw, two or
// more start a spin that settles after the configured duration
func (h *WheelHandler) StartSpin(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	var req models.StartSpinRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidates := make([]wheel.Candidate, len(req.RestaurantIDs))
	for i, id := range req.RestaurantIDs {
		candidates[i] = wheel.Candidate{ID: id}
	}
	if err := wheel.ValidateCandidates(candidates); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(candidates) == 0 {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "no restaurants to choose from")
		return
	}

	ctx := r.Context()

	// Labels come from the restaurant cache, never from the client
	for i := range candidates {
		rest, err := loadRestaurant(ctx, h.db, candidates[i].ID)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusNotFound, fmt.Sprintf("restaurant %s not found", candidates[i].ID))
			return
		}
		if err != nil {
			slog.Error("failed to query restaurant", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		candidates[i].Label = rest.Name
	}

	state, err := h.currentState(ctx, user.ID)
	if err != nil {
		slog.Error("failed to load wheel state", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if state.activeSpinID.Valid {
		middleware.ErrorResponse(w, http.StatusConflict, errSpinInFlight.Error())
		return
	}

	if len(candidates) == 1 {
		h.autoSelect(w, r, user.ID, candidates[0])
		return
	}

	plan, ok := h.selector.Spin(candidates, wheel.SpinState{CurrentRotation: state.rotation})
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "not enough restaurants to spin")
		return
	}

	spinID := auth.NewID()
	startedAt := h.clock.Now().UTC()
	settlesAt := startedAt.Add(plan.Duration)

	err = h.insertSpin(ctx, user.ID, spinID, plan, candidates, startedAt, settlesAt)
	if errors.Is(err, errSpinInFlight) {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to start spin", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("spin started",
		"spin_id", spinID,
		"user_id", user.ID,
		"candidates", len(candidates),
		"final_rotation", plan.FinalRotation,
	)

	signals := make([]models.SignalView, len(plan.Signals))
	for i, s := range plan.Signals {
		signals[i] = models.SignalView{OffsetMS: s.Offset.Milliseconds(), Kind: s.Kind}
	}

	middleware.JSONResponse(w, http.StatusAccepted, models.StartSpinResponse{
		SpinID:     spinID,
		Plan:       plan,
		DurationMS: plan.Duration.Milliseconds(),
		Signals:    signals,
		Candidates: candidates,
		StartedAt:  startedAt,
		SettlesAt:  settlesAt,
	})
}

// GetSpin handles GET /wheel/spins/{id}
func (h *WheelHandler) GetSpin(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	spin, ok := h.userSpin(w, r, user.ID)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, h.spinResponse(spin))
}

// CancelSpin handles POST /wheel/spins/{id}/cancel
// The rotation stays where it was and nothing is selected
func (h *WheelHandler) CancelSpin(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	spin, ok := h.userSpin(w, r, user.ID)
	if !ok {
		return
	}
	if spin.status != models.SpinStatusSpinning {
		middleware.ErrorResponse(w, http.StatusConflict, "spin already "+spin.status)
		return
	}

	ctx := r.Context()
	cancelled, err := h.cancel(ctx, spin)
	if err != nil {
		slog.Error("failed to cancel spin", "error", err, "spin_id", spin.id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !cancelled {
		middleware.ErrorResponse(w, http.StatusConflict, "spin is no longer in progress")
		return
	}

	reloaded, err := h.loadSpin(ctx, spin.id)
	if err != nil {
		slog.Error("failed to reload spin", "error", err, "spin_id", spin.id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("spin cancelled", "spin_id", spin.id, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, h.spinResponse(reloaded))
}

// userSpin loads the spin named in the path and settles it if it is due.
// Spins owned by someone else are reported as not found.
func (h *WheelHandler) userSpin(w http.ResponseWriter, r *http.Request, userID string) (spinRecord, bool) {
	ctx := r.Context()

	spin, err := h.loadSpin(ctx, r.PathValue("id"))
	if err == sql.ErrNoRows || (err == nil && spin.userID != userID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "spin not found")
		return spinRecord{}, false
	}
	if err != nil {
		slog.Error("failed to load spin", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return spinRecord{}, false
	}

	spin, err = h.settleIfDue(ctx, spin)
	if err != nil {
		slog.Error("failed to settle spin", "error", err, "spin_id", spin.id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return spinRecord{}, false
	}
	return spin, true
}

func (h *WheelHandler) spinResponse(spin spinRecord) models.SpinResponse {
	resp := models.SpinResponse{
		SpinID:        spin.id,
		Status:        spin.status,
		Plan:          spin.plan,
		Candidates:    spin.candidates,
		StartedAt:     spin.startedAt,
		SettlesAt:     spin.settlesAt,
		SelectedIndex: nullIntPtr(spin.selectedIndex),
	}
	if spin.status == models.SpinStatusSpinning {
		if remaining := spin.settlesAt.Sub(h.clock.Now()); remaining > 0 {
			resp.RemainingMS = remaining.Milliseconds()
		}
	}
	if spin.selectedIndex.Valid {
		idx := int(spin.selectedIndex.Int64)
		if idx >= 0 && idx < len(spin.candidates) {
			c := spin.candidates[idx]
			resp.Selected = &c
		}
	}
	if spin.resolvedAt.Valid {
		t := spin.resolvedAt.Time
		resp.ResolvedAt = &t
	}
	return resp
}

// currentState returns the user's wheel, creating it on first use and
// settling an in-flight spin whose time is up
func (h *WheelHandler) currentState(ctx context.Context, userID string) (wheelState, error) {
	state, err := h.loadState(ctx, userID)
	if err != nil || !state.activeSpinID.Valid {
		return state, err
	}

	spin, err := h.loadSpin(ctx, state.activeSpinID.String)
	if err != nil {
		return wheelState{}, fmt.Errorf("failed to load active spin: %w", err)
	}
	settled, err := h.settleIfDue(ctx, spin)
	if err != nil {
		return wheelState{}, err
	}
	if settled.status == models.SpinStatusSpinning {
		return state, nil
	}
	return h.loadState(ctx, userID)
}

func (h *WheelHandler) loadState(ctx context.Context, userID string) (wheelState, error) {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO wheel_state (user_id, current_rotation, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, 0.0, h.clock.Now().UTC())
	if err != nil {
		return wheelState{}, fmt.Errorf("failed to create wheel state: %w", err)
	}

	var s wheelState
	err = h.db.QueryRowContext(ctx, `
		SELECT current_rotation, active_spin_id, selected_index, selected_restaurant_id, selected_label
		FROM wheel_state
		WHERE user_id = $1
	`, userID).Scan(&s.rotation, &s.activeSpinID, &s.selectedIndex, &s.selectedID, &s.selectedLabel)
	if err != nil {
		return wheelState{}, fmt.Errorf("failed to query wheel state: %w", err)
	}
	return s, nil
}

// loadSpin returns sql.ErrNoRows for unknown spins
func (h *WheelHandler) loadSpin(ctx context.Context, id string) (spinRecord, error) {
	var s spinRecord
	var durationMS int64
	err := h.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, start_rotation, final_rotation, full_turns, offset_degrees,
			pointer_offset, duration_ms, started_at, settles_at, selected_index, resolved_at
		FROM spin
		WHERE id = $1
	`, id).Scan(&s.id, &s.userID, &s.status, &s.plan.StartRotation, &s.plan.FinalRotation,
		&s.plan.FullTurns, &s.plan.OffsetDegrees, &s.plan.PointerOffset, &durationMS, &s.startedAt, &s.settlesAt,
		&s.selectedIndex, &s.resolvedAt)
	if err != nil {
		return spinRecord{}, err
	}
	s.plan.Duration = time.Duration(durationMS) * time.Millisecond

	rows, err := h.db.QueryContext(ctx, `
		SELECT restaurant_id, label
		FROM spin_candidate
		WHERE spin_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return spinRecord{}, fmt.Errorf("failed to query spin candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c wheel.Candidate
		if err := rows.Scan(&c.ID, &c.Label); err != nil {
			return spinRecord{}, fmt.Errorf("failed to scan spin candidate: %w", err)
		}
		s.candidates = append(s.candidates, c)
	}
	return s, rows.Err()
}

func (h *WheelHandler) insertSpin(ctx context.Context, userID, spinID string, plan wheel.SpinPlan, candidates []wheel.Candidate, startedAt, settlesAt time.Time) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Claim the wheel; losing the race means another spin got there first
	res, err := tx.ExecContext(ctx, `
		UPDATE wheel_state
		SET active_spin_id = $1, selected_index = NULL, selected_restaurant_id = NULL,
			selected_label = NULL, updated_at = $2
		WHERE user_id = $3 AND active_spin_id IS NULL
	`, spinID, startedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to claim wheel: %w", err)
	}
	if ok, err := claimed(res); err != nil {
		return err
	} else if !ok {
		return errSpinInFlight
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO spin (id, user_id, status, start_rotation, final_rotation, full_turns, offset_degrees,
			pointer_offset, duration_ms, started_at, settles_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, spinID, userID, models.SpinStatusSpinning, plan.StartRotation, plan.FinalRotation,
		plan.FullTurns, plan.OffsetDegrees, plan.PointerOffset, plan.Duration.Milliseconds(), startedAt, settlesAt)
	if err != nil {
		return fmt.Errorf("failed to insert spin: %w", err)
	}

	for i, c := range candidates {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO spin_candidate (spin_id, position, restaurant_id, label)
			VALUES ($1, $2, $3, $4)
		`, spinID, i, c.ID, c.Label)
		if err != nil {
			return fmt.Errorf("failed to insert spin candidate: %w", err)
		}
	}

	return tx.Commit()
}

// settleIfDue resolves a spin whose settle time has passed. The status
// guard on the UPDATE makes resolution happen exactly once even when
// several requests observe the expired spin together.
func (h *WheelHandler) settleIfDue(ctx context.Context, spin spinRecord) (spinRecord, error) {
	if spin.status != models.SpinStatusSpinning || h.clock.Now().Before(spin.settlesAt) {
		return spin, nil
	}
	if len(spin.candidates) == 0 {
		return spinRecord{}, fmt.Errorf("spin %s has no candidates", spin.id)
	}

	// The stored pointer offset keeps the winner fixed across config changes
	idx := spin.plan.Resolve(len(spin.candidates))
	chosen := spin.candidates[idx]
	now := h.clock.Now().UTC()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return spinRecord{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE spin
		SET status = $1, selected_index = $2, resolved_at = $3
		WHERE id = $4 AND status = $5
	`, models.SpinStatusSettled, idx, now, spin.id, models.SpinStatusSpinning)
	if err != nil {
		return spinRecord{}, fmt.Errorf("failed to settle spin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return spinRecord{}, err
	}

	if n == 1 {
		_, err = tx.ExecContext(ctx, `
			UPDATE wheel_state
			SET current_rotation = $1, active_spin_id = NULL, selected_index = $2,
				selected_restaurant_id = $3, selected_label = $4, updated_at = $5
			WHERE user_id = $6 AND active_spin_id = $7
		`, spin.plan.FinalRotation, idx, chosen.ID, chosen.Label, now, spin.userID, spin.id)
		if err != nil {
			return spinRecord{}, fmt.Errorf("failed to update wheel state: %w", err)
		}

		if _, err := recordHistory(ctx, tx, spin.userID, chosen.ID, chosen.Label, models.SourceWheel, nil, "", now); err != nil {
			return spinRecord{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return spinRecord{}, err
	}

	if n == 1 {
		slog.Info("spin settled", "spin_id", spin.id, "selected_index", idx, "restaurant_id", chosen.ID)
	}

	// Someone else may have settled or cancelled it; report what is stored
	return h.loadSpin(ctx, spin.id)
}

func (h *WheelHandler) cancel(ctx context.Context, spin spinRecord) (bool, error) {
	now := h.clock.Now().UTC()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE spin SET status = $1, resolved_at = $2
		WHERE id = $3 AND status = $4
	`, models.SpinStatusCancelled, now, spin.id, models.SpinStatusSpinning)
	if err != nil {
		return false, fmt.Errorf("failed to cancel spin: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wheel_state
		SET active_spin_id = NULL, selected_index = NULL, selected_restaurant_id = NULL,
			selected_label = NULL, updated_at = $1
		WHERE user_id = $2 AND active_spin_id = $3
	`, now, spin.userID, spin.id)
	if err != nil {
		return false, fmt.Errorf("failed to release wheel: %w", err)
	}

	return true, tx.Commit()
}

// autoSelect handles the single-candidate case: no draw and no rotation
func (h *WheelHandler) autoSelect(w http.ResponseWriter, r *http.Request, userID string, c wheel.Candidate) {
	ctx := r.Context()
	now := h.clock.Now().UTC()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE wheel_state
		SET selected_index = $1, selected_restaurant_id = $2, selected_label = $3, updated_at = $4
		WHERE user_id = $5 AND active_spin_id IS NULL
	`, 0, c.ID, c.Label, now, userID)
	if err != nil {
		slog.Error("failed to store selection", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	ok, err := claimed(res)
	if err != nil {
		slog.Error("failed to store selection", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusConflict, errSpinInFlight.Error())
		return
	}

	if _, err := recordHistory(ctx, tx, userID, c.ID, c.Label, models.SourceWheel, nil, "", now); err != nil {
		slog.Error("failed to record history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit selection", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("single restaurant auto-selected", "user_id", userID, "restaurant_id", c.ID)

	middleware.JSONResponse(w, http.StatusOK, models.AutoSelectResponse{
		AutoSelected:  true,
		SelectedIndex: 0,
		Selected:      c,
	})
}

// claimed reports whether a guarded UPDATE matched a row
func claimed(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
