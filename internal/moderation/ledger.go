package moderation

import (
	"time"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

// votePriority breaks ties between equal tallies. Lower index wins, so a
// tied outcome always resolves toward keeping content rather than removing
// it.
var votePriority = []string{models.VoteKeep, models.VoteEdit, models.VoteDelete}

// BallotEntry is one voter's current vote joined with the voter's role.
type BallotEntry struct {
	VoterID   uint      `json:"voter_id"`
	VoterName string    `json:"voter_name,omitempty"`
	VoterRole string    `json:"voter_role"`
	Vote      string    `json:"vote"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerState is the quorum/majority evaluation of all votes on one target.
type LedgerState struct {
	Votes        []BallotEntry  `json:"votes"`
	VoteCounts   map[string]int `json:"vote_counts"`
	CanDecide    bool           `json:"can_decide"`
	MajorityVote string         `json:"majority_vote,omitempty"` // empty until quorum is reached
}

// EvaluateLedger computes quorum and majority from the full current vote set
// for a target. It is a pure function of its input: callers re-read the vote
// rows and re-evaluate on every cast, so redundant concurrent evaluation is
// harmless.
//
// Quorum is reached once at least one admin has voted, or at least two
// distinct teachers have. Any admin vote overrides the tally outright: the
// earliest-cast admin vote (by created_at, then voter id) is the decision.
// With no admin vote, the vote type with the highest tally wins, ties broken
// by votePriority order.
func EvaluateLedger(votes []BallotEntry) LedgerState {
	state := LedgerState{
		Votes: votes,
		VoteCounts: map[string]int{
			models.VoteKeep:   0,
			models.VoteEdit:   0,
			models.VoteDelete: 0,
		},
	}

	var firstAdmin *BallotEntry
	teacherVoters := make(map[uint]bool)

	for i := range votes {
		v := &votes[i]
		state.VoteCounts[v.Vote]++

		switch v.VoterRole {
		case models.RoleAdmin:
			if firstAdmin == nil || v.CreatedAt.Before(firstAdmin.CreatedAt) ||
				(v.CreatedAt.Equal(firstAdmin.CreatedAt) && v.VoterID < firstAdmin.VoterID) {
				firstAdmin = v
			}
		case models.RoleTeacher:
			teacherVoters[v.VoterID] = true
		}
	}

	state.CanDecide = firstAdmin != nil || len(teacherVoters) >= 2
	if !state.CanDecide {
		return state
	}

	if firstAdmin != nil {
		state.MajorityVote = firstAdmin.Vote
		return state
	}

	majority := votePriority[0]
	for _, vote := range votePriority[1:] {
		if state.VoteCounts[vote] > state.VoteCounts[majority] {
			majority = vote
		}
	}
	state.MajorityVote = majority
	return state
}
