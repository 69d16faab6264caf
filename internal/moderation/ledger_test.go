package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

func ballot(voterID uint, role, vote string, castAt time.Time) BallotEntry {
	return BallotEntry{VoterID: voterID, VoterRole: role, Vote: vote, CreatedAt: castAt}
}

func TestEvaluateLedgerQuorum(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()

	table := []struct {
		name      string
		votes     []BallotEntry
		canDecide bool
	}{
		{"no votes", nil, false},
		{"one teacher", []BallotEntry{
			ballot(1, models.RoleTeacher, models.VoteKeep, now),
		}, false},
		{"two teachers", []BallotEntry{
			ballot(1, models.RoleTeacher, models.VoteKeep, now),
			ballot(2, models.RoleTeacher, models.VoteDelete, now),
		}, true},
		{"one admin alone", []BallotEntry{
			ballot(3, models.RoleAdmin, models.VoteDelete, now),
		}, true},
		{"admin plus one teacher", []BallotEntry{
			ballot(1, models.RoleTeacher, models.VoteKeep, now),
			ballot(3, models.RoleAdmin, models.VoteKeep, now),
		}, true},
	}

	for _, row := range table {
		state := EvaluateLedger(row.votes)
		assert.Equal(row.canDecide, state.CanDecide, row.name)
	}
}

func TestEvaluateLedgerMajority(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()

	// keep:2 delete:1, no admin -> keep
	state := EvaluateLedger([]BallotEntry{
		ballot(1, models.RoleTeacher, models.VoteKeep, now),
		ballot(2, models.RoleTeacher, models.VoteKeep, now),
		ballot(4, models.RoleTeacher, models.VoteDelete, now),
	})
	assert.True(state.CanDecide)
	assert.Equal(models.VoteKeep, state.MajorityVote)
	assert.Equal(2, state.VoteCounts[models.VoteKeep])
	assert.Equal(1, state.VoteCounts[models.VoteDelete])
	assert.Equal(0, state.VoteCounts[models.VoteEdit])

	// delete outnumbers keep
	state = EvaluateLedger([]BallotEntry{
		ballot(1, models.RoleTeacher, models.VoteDelete, now),
		ballot(2, models.RoleTeacher, models.VoteDelete, now),
		ballot(4, models.RoleTeacher, models.VoteKeep, now),
	})
	assert.Equal(models.VoteDelete, state.MajorityVote)
}

func TestEvaluateLedgerAdminOverride(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()

	// Three teachers say delete, one admin says keep: the admin wins.
	state := EvaluateLedger([]BallotEntry{
		ballot(1, models.RoleTeacher, models.VoteDelete, now),
		ballot(2, models.RoleTeacher, models.VoteDelete, now),
		ballot(4, models.RoleTeacher, models.VoteDelete, now),
		ballot(9, models.RoleAdmin, models.VoteKeep, now.Add(time.Minute)),
	})
	assert.True(state.CanDecide)
	assert.Equal(models.VoteKeep, state.MajorityVote)

	// Two disagreeing admins: the earlier vote decides.
	state = EvaluateLedger([]BallotEntry{
		ballot(9, models.RoleAdmin, models.VoteKeep, now.Add(time.Minute)),
		ballot(8, models.RoleAdmin, models.VoteDelete, now),
	})
	assert.Equal(models.VoteDelete, state.MajorityVote)

	// Same timestamp: the lower voter id decides, deterministically.
	state = EvaluateLedger([]BallotEntry{
		ballot(9, models.RoleAdmin, models.VoteKeep, now),
		ballot(8, models.RoleAdmin, models.VoteDelete, now),
	})
	assert.Equal(models.VoteDelete, state.MajorityVote)
}

func TestEvaluateLedgerTieBreak(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()

	// keep and delete tied at one each: keep outranks delete.
	state := EvaluateLedger([]BallotEntry{
		ballot(1, models.RoleTeacher, models.VoteKeep, now),
		ballot(2, models.RoleTeacher, models.VoteDelete, now),
	})
	assert.True(state.CanDecide)
	assert.Equal(models.VoteKeep, state.MajorityVote)

	// edit and delete tied: edit outranks delete.
	state = EvaluateLedger([]BallotEntry{
		ballot(1, models.RoleTeacher, models.VoteEdit, now),
		ballot(2, models.RoleTeacher, models.VoteDelete, now),
	})
	assert.Equal(models.VoteEdit, state.MajorityVote)
}

func TestEvaluateLedgerStudentVotesDoNotReachQuorum(t *testing.T) {
	now := time.Now()

	// Student rows should never appear, but a stray one must not tip quorum.
	state := EvaluateLedger([]BallotEntry{
		ballot(1, models.RoleStudent, models.VoteDelete, now),
		ballot(2, models.RoleStudent, models.VoteDelete, now),
	})
	assert.False(t, state.CanDecide)
	assert.Empty(t, state.MajorityVote)
}
