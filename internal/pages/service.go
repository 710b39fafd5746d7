package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/regions"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// ContentCleaner removes the content items of deleted pages.
type ContentCleaner interface {
	DeletePageContent(ctx context.Context, pageIDs []uuid.UUID) (int, error)
}

// Invalidator drops cached per page data after a save.
type Invalidator interface {
	Invalidate(ctx context.Context, pageIDs ...uuid.UUID) error
}

// PageInput carries the editable columns of a page.
type PageInput struct {
	ParentID        *uuid.UUID
	Title           string
	Slug            string
	Active          bool
	InNavigation    bool
	OverrideURL     string
	RedirectTo      string
	TemplateKey     string
	Position        int
	Language        string
	MetaTitle       string
	MetaDescription string
	PublishAt       *time.Time
	UnpublishAt     *time.Time
}

type CreatePageRequest struct {
	ID uuid.UUID
	PageInput
}

type UpdatePageRequest struct {
	ID uuid.UUID
	PageInput
}

// MovePageRequest reparents a page. A nil ParentID makes it a root.
type MovePageRequest struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
	Position int
}

// DeletePageRequest removes a page. Without Cascade a page with children is
// rejected.
type DeletePageRequest struct {
	ID      uuid.UUID
	Cascade bool
}

// SaveResult reports the saved page and the descendants whose cached URL
// was rewritten by the save.
type SaveResult struct {
	Page     *Page
	Cascaded []*Page
}

// DeleteResult lists the removed pages and the number of content items
// removed with them.
type DeleteResult struct {
	Pages        []uuid.UUID
	ContentItems int
}

// Service is the only writer of pages. Every save validates structure and
// URL uniqueness against the whole tree and persists the recomputed subtree
// in one repository call.
type Service struct {
	repo        Repository
	templates   *regions.Registry
	content     ContentCleaner
	invalidator Invalidator
	now         func() time.Time
	id          func() uuid.UUID
	logger      interfaces.Logger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() uuid.UUID) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.id = gen
		}
	}
}

func WithContentCleaner(cleaner ContentCleaner) ServiceOption {
	return func(s *Service) {
		s.content = cleaner
	}
}

func WithInvalidator(inv Invalidator) ServiceOption {
	return func(s *Service) {
		s.invalidator = inv
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.Ensure(logger)
	}
}

func NewService(repo Repository, templates *regions.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		templates: templates,
		now:       time.Now,
		id:        uuid.New,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, ErrPageRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Page, error) {
	return s.repo.List(ctx)
}

// Tree loads every page into an arena.
func (s *Service) Tree(ctx context.Context) (*Tree, error) {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(pages)
}

// PageTemplate returns the template key of a page.
func (s *Service) PageTemplate(ctx context.Context, id uuid.UUID) (string, error) {
	page, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return page.TemplateKey, nil
}

func (s *Service) Create(ctx context.Context, req CreatePageRequest) (*SaveResult, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	page := &Page{ID: req.ID, CreatedAt: now, UpdatedAt: now}
	if page.ID == uuid.Nil {
		page.ID = s.id()
	}
	if _, exists := tree.Get(page.ID); exists {
		return nil, fmt.Errorf("%w: page %s already exists", ErrInvalidPage, page.ID)
	}
	applyInput(page, req.PageInput)

	result, err := s.save(ctx, tree, page, false)
	if err != nil {
		return nil, err
	}
	s.logger.Info("page.created", "page_id", page.ID, "cached_url", page.CachedURL)
	return result, nil
}

func (s *Service) Update(ctx context.Context, req UpdatePageRequest) (*SaveResult, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := tree.Get(req.ID)
	if !ok {
		return nil, &NotFoundError{Key: req.ID.String()}
	}
	page := clonePage(current)
	applyInput(page, req.PageInput)
	page.UpdatedAt = s.now().UTC()

	result, err := s.save(ctx, tree, page, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("page.updated", "page_id", page.ID, "cached_url", page.CachedURL, "cascade", len(result.Cascaded))
	return result, nil
}

func (s *Service) Move(ctx context.Context, req MovePageRequest) (*SaveResult, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	current, ok := tree.Get(req.ID)
	if !ok {
		return nil, &NotFoundError{Key: req.ID.String()}
	}
	page := clonePage(current)
	page.ParentID = req.ParentID
	page.Position = req.Position
	page.UpdatedAt = s.now().UTC()

	result, err := s.save(ctx, tree, page, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("page.moved", "page_id", page.ID, "cached_url", page.CachedURL, "cascade", len(result.Cascaded))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, req DeletePageRequest) (*DeleteResult, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Get(req.ID); !ok {
		return nil, &NotFoundError{Key: req.ID.String()}
	}
	if len(tree.Children(req.ID)) > 0 && !req.Cascade {
		return nil, ErrPageHasChildren
	}

	ancestors := tree.Ancestors(req.ID)
	removed := tree.Remove(req.ID)
	ids := make([]uuid.UUID, 0, len(removed))
	for _, page := range removed {
		ids = append(ids, page.ID)
	}
	if err := s.repo.Delete(ctx, ids); err != nil {
		return nil, err
	}

	result := &DeleteResult{Pages: ids}
	if s.content != nil {
		count, err := s.content.DeletePageContent(ctx, ids)
		if err != nil {
			return result, fmt.Errorf("delete page content: %w", err)
		}
		result.ContentItems = count
	}
	s.invalidate(ctx, append(ids, pageIDs(ancestors)...)...)
	s.logger.Info("page.deleted", "page_id", req.ID, "pages", len(ids), "content_items", result.ContentItems)
	return result, nil
}

func (s *Service) save(ctx context.Context, tree *Tree, page *Page, existing bool) (*SaveResult, error) {
	if page.ParentID != nil && *page.ParentID == uuid.Nil {
		page.ParentID = nil
	}
	if err := s.validateFields(page); err != nil {
		return nil, err
	}
	tpl, ok := s.templates.Template(page.TemplateKey)
	if !ok {
		return nil, newValidationError(ErrTemplateUnknown, "template", "pagetree.page.template_unknown",
			fmt.Sprintf("template %q is not registered", page.TemplateKey))
	}
	if err := s.checkStructure(tree, page, tpl); err != nil {
		return nil, err
	}
	if err := checkSingleton(tree, page, tpl); err != nil {
		return nil, err
	}

	if err := tree.Put(page); err != nil {
		return nil, err
	}
	changed := tree.RecomputeSubtree(page.ID)
	if err := checkCollisions(tree, page); err != nil {
		return nil, err
	}

	change := TreeChange{}
	var cascaded []*Page
	if existing {
		change.Updated = append(change.Updated, page)
	} else {
		change.Created = page
	}
	for _, p := range changed {
		if p.ID == page.ID {
			continue
		}
		p.UpdatedAt = page.UpdatedAt
		change.Updated = append(change.Updated, p)
		cascaded = append(cascaded, p)
	}
	if err := s.repo.SaveTree(ctx, change); err != nil {
		return nil, err
	}

	affected := append([]uuid.UUID{page.ID}, pageIDs(tree.Ancestors(page.ID))...)
	affected = append(affected, pageIDs(tree.Descendants(page.ID))...)
	s.invalidate(ctx, affected...)

	return &SaveResult{Page: clonePage(page), Cascaded: cascaded}, nil
}

func (s *Service) validateFields(page *Page) error {
	errs := validation.Errors{
		"title": validation.Validate(page.Title, validation.Required.ErrorObject(
			validation.NewError("pagetree.page.title_required", "title is required"))),
		"template": validation.Validate(page.TemplateKey, validation.Required.ErrorObject(
			validation.NewError("pagetree.page.template_required", "template is required"))),
	}
	if page.OverrideURL == "" {
		errs["slug"] = validation.Validate(page.Slug, validation.Required.ErrorObject(
			validation.NewError("pagetree.page.slug_required", "slug is required unless override_url is set")))
	} else if !strings.HasPrefix(page.OverrideURL, "/") || !strings.HasSuffix(page.OverrideURL, "/") {
		errs["override_url"] = validation.NewError("pagetree.page.override_url_invalid", "override_url must start and end with /")
	}
	if page.PublishAt != nil && page.UnpublishAt != nil && !page.PublishAt.Before(*page.UnpublishAt) {
		errs["unpublish_at"] = validation.NewError("pagetree.page.schedule_invalid", ErrScheduleWindowInvalid.Error())
	}
	if err := errs.Filter(); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			return &ValidationError{Fields: fields, Err: ErrInvalidPage}
		}
		return err
	}
	return nil
}

func (s *Service) checkStructure(tree *Tree, page *Page, tpl *regions.Template) error {
	if tpl.EnforceLeaf && len(tree.Children(page.ID)) > 0 {
		return ErrLeafHasChildren
	}
	if page.ParentID == nil {
		return nil
	}
	parentID := *page.ParentID
	if parentID == page.ID || tree.IsDescendant(parentID, page.ID) {
		return ErrInvalidMove
	}
	parent, ok := tree.Get(parentID)
	if !ok {
		return ErrParentNotFound
	}
	if parentTpl, ok := s.templates.Template(parent.TemplateKey); ok && parentTpl.EnforceLeaf {
		return ErrParentIsLeaf
	}
	return nil
}

func checkSingleton(tree *Tree, page *Page, tpl *regions.Template) error {
	if !tpl.Singleton || !page.Active {
		return nil
	}
	for _, other := range tree.Pages() {
		if other.ID != page.ID && other.Active && other.TemplateKey == tpl.Key {
			return newValidationError(ErrSingletonTemplate, "template", "pagetree.page.template_singleton",
				fmt.Sprintf("template %q is already used by page %s", tpl.Key, other.ID))
		}
	}
	return nil
}

// checkCollisions rejects the save when an active page of the recomputed
// subtree shares its cached URL with another active page.
func checkCollisions(tree *Tree, page *Page) error {
	subtree := append([]*Page{page}, tree.Descendants(page.ID)...)
	inSubtree := make(map[uuid.UUID]bool, len(subtree))
	for _, p := range subtree {
		inSubtree[p.ID] = true
	}

	taken := make(map[string]uuid.UUID)
	for _, other := range tree.Pages() {
		if other.Active && !inSubtree[other.ID] {
			taken[other.CachedURL] = other.ID
		}
	}
	for _, p := range subtree {
		if !p.Active {
			continue
		}
		if owner, clash := taken[p.CachedURL]; clash {
			field := "slug"
			if p.ID == page.ID && page.OverrideURL != "" {
				field = "override_url"
			}
			return newValidationError(ErrURLCollision, field, "pagetree.page.url_collision",
				fmt.Sprintf("url %s is already used by page %s", p.CachedURL, owner))
		}
		taken[p.CachedURL] = p.ID
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if s.invalidator == nil || len(ids) == 0 {
		return
	}
	if err := s.invalidator.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("page.inventory.invalidate_failed", "error", err)
	}
}

func applyInput(page *Page, in PageInput) {
	page.ParentID = in.ParentID
	page.Title = strings.TrimSpace(in.Title)
	page.Slug = normalizeSlug(in.Slug)
	page.Active = in.Active
	page.InNavigation = in.InNavigation
	page.OverrideURL = strings.TrimSpace(in.OverrideURL)
	page.RedirectTo = strings.TrimSpace(in.RedirectTo)
	page.TemplateKey = strings.TrimSpace(in.TemplateKey)
	page.Position = in.Position
	page.Language = strings.TrimSpace(in.Language)
	page.MetaTitle = in.MetaTitle
	page.MetaDescription = in.MetaDescription
	page.PublishAt = in.PublishAt
	page.UnpublishAt = in.UnpublishAt
}

func normalizeSlug(value string) string {
	trimmed := strings.Trim(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return ""
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return strings.ToLower(trimmed)
	}
	return normalized
}

func pageIDs(pages []*Page) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.ID)
	}
	return out
}
