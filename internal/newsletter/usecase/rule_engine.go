package usecase

import (
	"strings"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"
	"newsbox-backend/internal/newsletter/repository"
)

// RuleEngine applies user-defined rules to newsletters after import. Rules
// run in creation order; a later matching rule overwrites fields set by an
// earlier one.
type RuleEngine struct {
	ruleRepo       repository.RuleRepository
	newsletterRepo repository.NewsletterRepository
}

func NewRuleEngine(ruleRepo repository.RuleRepository, newsletterRepo repository.NewsletterRepository) *RuleEngine {
	return &RuleEngine{
		ruleRepo:       ruleRepo,
		newsletterRepo: newsletterRepo,
	}
}

// Apply mutates the newsletter in memory with every matching rule and
// reports whether anything changed.
func (e *RuleEngine) Apply(n *newsletterdomain.Newsletter, rules []*newsletterdomain.Rule) bool {
	changed := false
	for _, rule := range rules {
		if !rule.IsActive || !matches(n, rule) {
			continue
		}
		switch rule.ActionType {
		case newsletterdomain.ActionCategory:
			n.Category = rule.ActionValue
		case newsletterdomain.ActionPriority:
			n.Priority = rule.ActionValue
		case newsletterdomain.ActionFolder:
			n.Folder = rule.ActionValue
		default:
			continue
		}
		changed = true
	}
	return changed
}

// ApplyToNewsletter re-runs the user's active rules against one stored
// newsletter and persists the outcome.
func (e *RuleEngine) ApplyToNewsletter(userID, newsletterID string) (*newsletterdomain.Newsletter, error) {
	n, err := e.newsletterRepo.FindByID(userID, newsletterID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNewsletterNotFound
	}

	rules, err := e.ruleRepo.FindActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	if !e.Apply(n, rules) {
		return n, nil
	}

	err = e.newsletterRepo.UpdateFields(n.ID, map[string]interface{}{
		"category": n.Category,
		"priority": n.Priority,
		"folder":   n.Folder,
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func matches(n *newsletterdomain.Newsletter, rule *newsletterdomain.Rule) bool {
	switch rule.ConditionType {
	case newsletterdomain.ConditionSender:
		return strings.EqualFold(n.SenderEmail, rule.ConditionValue)
	case newsletterdomain.ConditionSubject:
		return containsFold(n.Subject, rule.ConditionValue)
	case newsletterdomain.ConditionContent:
		return containsFold(n.BodyText, rule.ConditionValue) || containsFold(n.BodyHTML, rule.ConditionValue)
	default:
		return false
	}
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
