package moderation

import (
	"strings"
	"unicode/utf8"
)

// Classifier outcomes
const (
	OutcomeAllow = "allow"
	OutcomeBlock = "block"
)

// OffTopicResult is the outcome of classifying a piece of content
type OffTopicResult struct {
	Outcome string `json:"outcome"` // allow, block
	Reason  string `json:"reason,omitempty"`
}

// offTopicCategory pairs a category name with its keyword list. Categories
// are scanned in slice order and the first match wins, so the table must
// stay an ordered slice rather than a map.
type offTopicCategory struct {
	name     string
	keywords []string
}

var offTopicPatterns = []offTopicCategory{
	{
		name: "dating",
		keywords: []string{
			"dating", "boyfriend", "girlfriend", "crush", "relationship",
			"romantic", "love", "breakup", "asking out", "date night",
			"valentine",
		},
	},
	{
		name: "appearance",
		keywords: []string{
			"rate me", "how do i look", "am i pretty", "am i ugly",
			"appearance rating", "looks", "attractive", "hot or not",
			"beauty", "makeup tips",
		},
	},
	{
		name: "entertainment",
		keywords: []string{
			"movie review", "tv show", "netflix", "streaming", "celebrity",
			"gossip", "entertainment", "pop culture", "music recommendation",
			"concert",
		},
	},
	{
		name: "memes",
		keywords: []string{
			"meme", "funny pic", "joke", "lol", "lmao", "rofl", "hilarious",
			"comedy", "viral", "tiktok", "instagram", "snapchat",
		},
	},
	{
		name: "politics",
		keywords: []string{
			"political", "election", "vote", "democrat", "republican",
			"liberal", "conservative", "government", "president", "congress",
			"senate",
		},
	},
	{
		name: "marketplace",
		keywords: []string{
			"selling", "buying", "for sale", "marketplace", "trade",
			"exchange", "money", "price", "cost", "cheap", "expensive",
			"deal",
		},
	},
	{
		name: "social",
		keywords: []string{
			"party", "hangout", "weekend plans", "social event", "gathering",
			"meetup", "casual chat", "whats up", "how was your day",
		},
	},
}

var academicKeywords = []string{
	"homework", "assignment", "test", "exam", "study", "class", "teacher",
	"subject", "math", "science", "english", "history", "biology",
	"chemistry", "physics", "algebra", "geometry", "essay", "research",
	"project", "grade", "school", "learning", "education", "academic",
	"curriculum", "lesson",
}

// ClassifyOffTopic decides whether submitted content belongs on the forum.
// It is pure and stateless: the same text always yields the same result.
// Content matching any off-topic category is blocked with reason
// "off_topic:<category>". Very short content with no academic keyword is
// blocked with reason "off_topic:too_brief".
func ClassifyOffTopic(text string) OffTopicResult {
	lowerText := strings.ToLower(text)

	for _, category := range offTopicPatterns {
		for _, keyword := range category.keywords {
			if strings.Contains(lowerText, keyword) {
				return OffTopicResult{
					Outcome: OutcomeBlock,
					Reason:  "off_topic:" + category.name,
				}
			}
		}
	}

	hasAcademicContent := false
	for _, keyword := range academicKeywords {
		if strings.Contains(lowerText, keyword) {
			hasAcademicContent = true
			break
		}
	}

	// Very short content with no academic keywords is probably off-topic
	if utf8.RuneCountInString(strings.TrimSpace(text)) < 20 && !hasAcademicContent {
		return OffTopicResult{
			Outcome: OutcomeBlock,
			Reason:  "off_topic:too_brief",
		}
	}

	return OffTopicResult{Outcome: OutcomeAllow}
}
