package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

type fakeReactionStore struct {
	repositories.ReactionRepository
	rows   map[uint]*models.Reaction
	nextID uint
}

func newFakeReactionStore() *fakeReactionStore {
	return &fakeReactionStore{rows: make(map[uint]*models.Reaction)}
}

func (s *fakeReactionStore) GetReaction(userID uint, targetType string, targetID uint) (*models.Reaction, error) {
	for _, row := range s.rows {
		if row.UserID == userID && row.TargetType == targetType && row.TargetID == targetID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeReactionStore) CreateReaction(reaction *models.Reaction) error {
	s.nextID++
	reaction.ID = s.nextID
	s.rows[reaction.ID] = reaction
	return nil
}

func (s *fakeReactionStore) UpdateReactionType(id uint, reactionType string) error {
	s.rows[id].ReactionType = reactionType
	return nil
}

func (s *fakeReactionStore) DeleteReaction(id uint) error {
	delete(s.rows, id)
	return nil
}

func (s *fakeReactionStore) ListByTarget(targetType string, targetID uint) ([]models.Reaction, error) {
	reactions := []models.Reaction{}
	for _, row := range s.rows {
		if row.TargetType == targetType && row.TargetID == targetID {
			reactions = append(reactions, *row)
		}
	}
	return reactions, nil
}

func react(t *testing.T, h *ReactionHandler, user *models.User, reactionType string) []models.Reaction {
	t.Helper()
	c, rec := moderationRequest(t, http.MethodPost, "/reactions", models.ReactRequest{
		TargetType:   models.TargetThread,
		TargetID:     9,
		ReactionType: reactionType,
	}, user)
	assert.NoError(t, h.React(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reactions []models.Reaction `json:"reactions"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Reactions
}

func TestReactSameTypeTwiceTogglesOff(t *testing.T) {
	store := newFakeReactionStore()
	handler := NewReactionHandler(store, nil)
	teacher := userWithRole(4, models.RoleTeacher)

	reactions := react(t, handler, teacher, models.ReactionApprove)
	if assert.Len(t, reactions, 1) {
		assert.Equal(t, models.ReactionApprove, reactions[0].ReactionType)
	}

	// Same type again clears the slot entirely.
	reactions = react(t, handler, teacher, models.ReactionApprove)
	assert.Empty(t, reactions)
	assert.Empty(t, store.rows)
}

func TestReactDifferentTypeReplaces(t *testing.T) {
	store := newFakeReactionStore()
	handler := NewReactionHandler(store, nil)
	teacher := userWithRole(4, models.RoleTeacher)

	react(t, handler, teacher, models.ReactionApprove)
	reactions := react(t, handler, teacher, models.ReactionConcern)

	if assert.Len(t, reactions, 1) {
		assert.Equal(t, models.ReactionConcern, reactions[0].ReactionType)
		assert.Equal(t, teacher.ID, reactions[0].UserID)
	}
	assert.Len(t, store.rows, 1)
}

func TestReactReturnsFullTargetSet(t *testing.T) {
	store := newFakeReactionStore()
	handler := NewReactionHandler(store, nil)

	other := &models.Reaction{UserID: 5, TargetType: models.TargetThread, TargetID: 9, ReactionType: models.ReactionDisagree}
	assert.NoError(t, store.CreateReaction(other))

	teacher := userWithRole(4, models.RoleTeacher)
	reactions := react(t, handler, teacher, models.ReactionApprove)

	assert.Len(t, reactions, 2)
	types := make(map[uint]string, len(reactions))
	for _, reaction := range reactions {
		types[reaction.UserID] = reaction.ReactionType
	}
	assert.Equal(t, map[uint]string{4: models.ReactionApprove, 5: models.ReactionDisagree}, types)
}
