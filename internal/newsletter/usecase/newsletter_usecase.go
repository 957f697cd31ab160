package usecase

import (
	"sort"
	"time"

	newsletterdomain "newsbox-backend/internal/newsletter/domain"
	newsletterdto "newsbox-backend/internal/newsletter/dto"
	"newsbox-backend/internal/newsletter/repository"
	"newsbox-backend/pkg/fuzzy"
)

// newsletterUsecase implements NewsletterUsecase interface
type newsletterUsecase struct {
	newsletterRepo repository.NewsletterRepository
	whitelistRepo  repository.WhitelistRepository
	ruleRepo       repository.RuleRepository
	categoryRepo   repository.CategoryRepository
	ruleEngine     *RuleEngine
}

// NewNewsletterUsecase creates a new instance of newsletterUsecase
func NewNewsletterUsecase(
	newsletterRepo repository.NewsletterRepository,
	whitelistRepo repository.WhitelistRepository,
	ruleRepo repository.RuleRepository,
	categoryRepo repository.CategoryRepository,
	ruleEngine *RuleEngine,
) NewsletterUsecase {
	return &newsletterUsecase{
		newsletterRepo: newsletterRepo,
		whitelistRepo:  whitelistRepo,
		ruleRepo:       ruleRepo,
		categoryRepo:   categoryRepo,
		ruleEngine:     ruleEngine,
	}
}

func (u *newsletterUsecase) List(userID string, filter newsletterdto.ListFilter) ([]*newsletterdomain.Newsletter, int64, error) {
	return u.newsletterRepo.ListByUser(userID, repository.NewsletterFilter{
		Category:   filter.Category,
		Folder:     filter.Folder,
		UnreadOnly: filter.UnreadOnly,
		Archived:   filter.Archived,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (u *newsletterUsecase) GetByID(userID, id string) (*newsletterdomain.Newsletter, error) {
	n, err := u.newsletterRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNewsletterNotFound
	}
	return n, nil
}

// Search scans the user's newsletters with typo-tolerant matching over
// subject and sender, ranked by relevance.
func (u *newsletterUsecase) Search(userID, query string, limit int) ([]*newsletterdomain.Newsletter, error) {
	newsletters, _, err := u.newsletterRepo.ListByUser(userID, repository.NewsletterFilter{})
	if err != nil {
		return nil, err
	}

	type scored struct {
		newsletter *newsletterdomain.Newsletter
		score      float64
	}
	var matched []scored
	for _, n := range newsletters {
		if !fuzzy.MatchNewsletter(query, n.Subject, n.SenderName, n.SenderEmail) {
			continue
		}
		matched = append(matched, scored{
			newsletter: n,
			score:      fuzzy.Score(query, n.Subject, n.SenderName, n.SenderEmail),
		})
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].score > matched[j].score })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]*newsletterdomain.Newsletter, len(matched))
	for i, m := range matched {
		results[i] = m.newsletter
	}
	return results, nil
}

func (u *newsletterUsecase) MarkRead(userID, id string, read bool) error {
	n, err := u.GetByID(userID, id)
	if err != nil {
		return err
	}
	return u.newsletterRepo.UpdateFields(n.ID, map[string]interface{}{"is_read": read})
}

func (u *newsletterUsecase) ToggleStar(userID, id string) (*newsletterdomain.Newsletter, error) {
	n, err := u.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	n.IsStarred = !n.IsStarred
	if err := u.newsletterRepo.UpdateFields(n.ID, map[string]interface{}{"is_starred": n.IsStarred}); err != nil {
		return nil, err
	}
	return n, nil
}

func (u *newsletterUsecase) Archive(userID, id string, archived bool) error {
	n, err := u.GetByID(userID, id)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{"is_archived": archived}
	if archived {
		fields["archived_at"] = time.Now()
	} else {
		fields["archived_at"] = nil
	}
	return u.newsletterRepo.UpdateFields(n.ID, fields)
}

func (u *newsletterUsecase) Update(userID, id string, req *newsletterdto.UpdateNewsletterRequest) (*newsletterdomain.Newsletter, error) {
	n, err := u.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Category != nil {
		n.Category = *req.Category
		fields["category"] = *req.Category
	}
	if req.Priority != nil {
		n.Priority = *req.Priority
		fields["priority"] = *req.Priority
	}
	if req.Folder != nil {
		n.Folder = *req.Folder
		fields["folder"] = *req.Folder
	}
	if len(fields) == 0 {
		return n, nil
	}

	if err := u.newsletterRepo.UpdateFields(n.ID, fields); err != nil {
		return nil, err
	}
	return n, nil
}

func (u *newsletterUsecase) Delete(userID, id string) error {
	n, err := u.GetByID(userID, id)
	if err != nil {
		return err
	}
	return u.newsletterRepo.Delete(userID, n.ID)
}

func (u *newsletterUsecase) ListWhitelist(userID string) ([]*newsletterdomain.WhitelistEntry, error) {
	return u.whitelistRepo.FindByUser(userID)
}

func (u *newsletterUsecase) AddWhitelist(userID string, req *newsletterdto.WhitelistRequest) error {
	return u.whitelistRepo.Upsert(&newsletterdomain.WhitelistEntry{
		UserID: userID,
		Email:  req.Email,
		Name:   req.Name,
	})
}

func (u *newsletterUsecase) RemoveWhitelist(userID, email string) error {
	return u.whitelistRepo.Delete(userID, email)
}

func (u *newsletterUsecase) ListRules(userID string) ([]*newsletterdomain.Rule, error) {
	return u.ruleRepo.FindByUser(userID)
}

func (u *newsletterUsecase) CreateRule(userID string, req *newsletterdto.RuleRequest) (*newsletterdomain.Rule, error) {
	rule := &newsletterdomain.Rule{
		UserID:         userID,
		Name:           req.Name,
		ConditionType:  req.ConditionType,
		ConditionValue: req.ConditionValue,
		ActionType:     req.ActionType,
		ActionValue:    req.ActionValue,
		IsActive:       true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	if err := u.ruleRepo.Create(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *newsletterUsecase) UpdateRule(userID, id string, req *newsletterdto.RuleRequest) (*newsletterdomain.Rule, error) {
	rule, err := u.ruleRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}

	rule.Name = req.Name
	rule.ConditionType = req.ConditionType
	rule.ConditionValue = req.ConditionValue
	rule.ActionType = req.ActionType
	rule.ActionValue = req.ActionValue
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.UpdatedAt = time.Now()

	if err := u.ruleRepo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (u *newsletterUsecase) DeleteRule(userID, id string) error {
	rule, err := u.ruleRepo.FindByID(userID, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return ErrRuleNotFound
	}
	return u.ruleRepo.Delete(userID, id)
}

func (u *newsletterUsecase) ApplyRules(userID, newsletterID string) (*newsletterdomain.Newsletter, error) {
	return u.ruleEngine.ApplyToNewsletter(userID, newsletterID)
}

func (u *newsletterUsecase) ListCategories(userID string) ([]*newsletterdomain.Category, error) {
	return u.categoryRepo.FindByUser(userID)
}

func (u *newsletterUsecase) CreateCategory(userID string, req *newsletterdto.CategoryRequest) (*newsletterdomain.Category, error) {
	category := &newsletterdomain.Category{
		UserID:    userID,
		Name:      req.Name,
		Color:     req.Color,
		Order:     req.Order,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (u *newsletterUsecase) DeleteCategory(userID, id string) error {
	return u.categoryRepo.Delete(userID, id)
}
