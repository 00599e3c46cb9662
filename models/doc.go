// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - RegisterRequest: email, password, name
  - LoginRequest: email, password
  - RatingRequest: rating (1-5)
  - AddHistoryRequest: restaurant_id, optional rating and note
  - StartSpinRequest: restaurant_ids in wheel order

# Response Types

  - AuthResponse: user, session_token
  - MeResponse: user and saved/visited counters
  - NearbyResponse, RestaurantDetail, FavoritesResponse, HistoryResponse
  - WheelStateResponse: is_spinning, current_rotation, selected_index
  - AutoSelectResponse: the single-candidate shortcut
  - StartSpinResponse: spin_id, plan, signals, settles_at
  - SpinResponse: status of one spin, with the winner once settled
  - ErrorResponse: error, message

# Constants

Spin status values:

	SpinStatusSpinning  = "spinning"
	SpinStatusSettled   = "settled"
	SpinStatusCancelled = "cancelled"

History sources:

	SourceManual = "manual"
	SourceWheel  = "wheel"
*/
package models
