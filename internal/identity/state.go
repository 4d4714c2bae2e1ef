package identity

import (
	"github.com/google/uuid"

	"taplist/internal/visitors"
)

// ClaimState is the explicit form of a visitor's nullable user_id column:
// Unclaimed, or ClaimedBy(user). Centralizing the transition rules here
// keeps conflict detection in one place instead of re-derived at each call
// site.
type ClaimState struct {
	owner *uuid.UUID
}

// Transition is the outcome of evaluating a claimant against the current
// state. UNCLAIMED → CLAIMED(user) is the only legal state change; a repeat
// claim by the owner is a no-op and anyone else is a conflict.
type Transition int

const (
	TransitionClaim Transition = iota
	TransitionNoop
	TransitionConflict
)

// StateOf reads the claim state off a visitor record.
func StateOf(v *visitors.Visitor) ClaimState {
	return ClaimState{owner: v.UserID}
}

// Unclaimed is the state of a visitor no account owns yet.
func Unclaimed() ClaimState {
	return ClaimState{}
}

// ClaimedBy is the state of a visitor owned by userID.
func ClaimedBy(userID uuid.UUID) ClaimState {
	return ClaimState{owner: &userID}
}

func (s ClaimState) IsClaimed() bool {
	return s.owner != nil
}

// Owner returns the claiming user, valid only when IsClaimed.
func (s ClaimState) Owner() uuid.UUID {
	if s.owner == nil {
		return uuid.Nil
	}
	return *s.owner
}

// Evaluate decides what claiming by userID means in this state.
func (s ClaimState) Evaluate(userID uuid.UUID) Transition {
	if s.owner == nil {
		return TransitionClaim
	}
	if *s.owner == userID {
		return TransitionNoop
	}
	return TransitionConflict
}
