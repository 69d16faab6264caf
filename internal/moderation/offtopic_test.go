package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOffTopicCategories(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		text    string
		outcome string
		reason  string
	}{
		{"hey whats up", OutcomeBlock, "off_topic:social"},
		{"let's talk about dating and relationships", OutcomeBlock, "off_topic:dating"},
		{"anyone seen this hilarious meme", OutcomeBlock, "off_topic:memes"},
		{"selling my old calculator, good price", OutcomeBlock, "off_topic:marketplace"},
		{"who are you voting for in the election", OutcomeBlock, "off_topic:politics"},
		{"RATE ME please", OutcomeBlock, "off_topic:appearance"},
		{"new netflix show dropped", OutcomeBlock, "off_topic:entertainment"},
		{"I need help with my algebra homework on quadratic equations", OutcomeAllow, ""},
		{"Can someone explain photosynthesis for our biology exam next week?", OutcomeAllow, ""},
	}

	for _, row := range table {
		result := ClassifyOffTopic(row.text)
		assert.Equal(row.outcome, result.Outcome, "text: %q", row.text)
		assert.Equal(row.reason, result.Reason, "text: %q", row.text)
	}
}

func TestClassifyOffTopicFirstCategoryWins(t *testing.T) {
	// "dating" is scanned before "memes"; a text hitting both must report dating.
	result := ClassifyOffTopic("dating memes compilation")
	assert.Equal(t, OutcomeBlock, result.Outcome)
	assert.Equal(t, "off_topic:dating", result.Reason)
}

func TestClassifyOffTopicBrevityHeuristic(t *testing.T) {
	assert := assert.New(t)

	// Short with no academic keyword: blocked as too brief.
	result := ClassifyOffTopic("hi")
	assert.Equal(OutcomeBlock, result.Outcome)
	assert.Equal("off_topic:too_brief", result.Reason)

	// Short but contains "test", an academic keyword: allowed.
	result = ClassifyOffTopic("test review")
	assert.Equal(OutcomeAllow, result.Outcome)
	assert.Empty(result.Reason)

	// Whitespace padding does not rescue a brief message.
	result = ClassifyOffTopic("   ok then              ")
	assert.Equal(OutcomeBlock, result.Outcome)
	assert.Equal("off_topic:too_brief", result.Reason)

	// Long enough without academic keywords: allowed.
	result = ClassifyOffTopic("does anyone understand the reading from yesterday at all")
	assert.Equal(OutcomeAllow, result.Outcome)
}

func TestClassifyOffTopicCaseInsensitive(t *testing.T) {
	result := ClassifyOffTopic("My BOYFRIEND said...")
	assert.Equal(t, OutcomeBlock, result.Outcome)
	assert.Equal(t, "off_topic:dating", result.Reason)
}
