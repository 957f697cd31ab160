package usecase

import (
	"testing"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"

	"github.com/stretchr/testify/assert"
)

func sampleNewsletter() *newsletterdomain.Newsletter {
	return &newsletterdomain.Newsletter{
		ID:          "n1",
		UserID:      "u1",
		Subject:     "Weekly Go Digest",
		SenderEmail: "news@golangweekly.com",
		BodyText:    "This week in Go: generics tips and tricks.",
	}
}

func senderRule(value, actionType, actionValue string) *newsletterdomain.Rule {
	return &newsletterdomain.Rule{
		ConditionType:  newsletterdomain.ConditionSender,
		ConditionValue: value,
		ActionType:     actionType,
		ActionValue:    actionValue,
		IsActive:       true,
	}
}

func TestApplySenderRuleExactMatch(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		senderRule("news@golangweekly.com", newsletterdomain.ActionCategory, "tech"),
	})

	assert.True(t, changed)
	assert.Equal(t, "tech", n.Category)
}

func TestApplySenderRuleIgnoresCase(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		senderRule("News@GolangWeekly.com", newsletterdomain.ActionCategory, "tech"),
	})

	assert.True(t, changed)
}

func TestApplySenderRuleNoSubstringMatch(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		senderRule("golangweekly.com", newsletterdomain.ActionCategory, "tech"),
	})

	assert.False(t, changed)
	assert.Empty(t, n.Category)
}

func TestApplySubjectRuleSubstring(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		{
			ConditionType:  newsletterdomain.ConditionSubject,
			ConditionValue: "digest",
			ActionType:     newsletterdomain.ActionPriority,
			ActionValue:    "low",
			IsActive:       true,
		},
	})

	assert.True(t, changed)
	assert.Equal(t, "low", n.Priority)
}

func TestApplyContentRuleChecksBothBodies(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()
	n.BodyText = ""
	n.BodyHTML = "<p>Generics tips inside</p>"

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		{
			ConditionType:  newsletterdomain.ConditionContent,
			ConditionValue: "generics",
			ActionType:     newsletterdomain.ActionFolder,
			ActionValue:    "programming",
			IsActive:       true,
		},
	})

	assert.True(t, changed)
	assert.Equal(t, "programming", n.Folder)
}

func TestApplySkipsInactiveRules(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	rule := senderRule("news@golangweekly.com", newsletterdomain.ActionCategory, "tech")
	rule.IsActive = false

	changed := engine.Apply(n, []*newsletterdomain.Rule{rule})

	assert.False(t, changed)
	assert.Empty(t, n.Category)
}

func TestApplyLaterRuleOverwritesEarlier(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		senderRule("news@golangweekly.com", newsletterdomain.ActionCategory, "first"),
		senderRule("news@golangweekly.com", newsletterdomain.ActionCategory, "second"),
	})

	assert.True(t, changed)
	assert.Equal(t, "second", n.Category)
}

func TestApplyIndependentActionsAccumulate(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	engine.Apply(n, []*newsletterdomain.Rule{
		senderRule("news@golangweekly.com", newsletterdomain.ActionCategory, "tech"),
		senderRule("news@golangweekly.com", newsletterdomain.ActionPriority, "high"),
		senderRule("news@golangweekly.com", newsletterdomain.ActionFolder, "reading"),
	})

	assert.Equal(t, "tech", n.Category)
	assert.Equal(t, "high", n.Priority)
	assert.Equal(t, "reading", n.Folder)
}

func TestApplyEmptyConditionValueNeverMatches(t *testing.T) {
	engine := NewRuleEngine(nil, nil)
	n := sampleNewsletter()

	changed := engine.Apply(n, []*newsletterdomain.Rule{
		{
			ConditionType:  newsletterdomain.ConditionSubject,
			ConditionValue: "",
			ActionType:     newsletterdomain.ActionCategory,
			ActionValue:    "tech",
			IsActive:       true,
		},
	})

	assert.False(t, changed)
}
