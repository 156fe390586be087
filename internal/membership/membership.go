// Package membership answers who may touch a trip.
//
// The owner is never stored among a trip's members, so every "is this user
// part of the trip" question must go through IsAuthorized, which unions both.
package membership

import "github.com/joliday/backend/internal/domain"

// IsOwner reports whether user owns trip.
func IsOwner(user domain.User, trip domain.Trip) bool {
	return trip.Owner.ID == user.ID
}

// IsMember reports whether user has joined trip through an invitation.
func IsMember(user domain.User, trip domain.Trip) bool {
	for _, m := range trip.Members {
		if m.ID == user.ID {
			return true
		}
	}
	return false
}

// IsAuthorized is the gate in front of every trip-scoped read or mutation.
func IsAuthorized(user domain.User, trip domain.Trip) bool {
	return IsOwner(user, trip) || IsMember(user, trip)
}
