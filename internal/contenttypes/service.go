package contenttypes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// PageLookup resolves the template key of a page.
type PageLookup interface {
	PageTemplate(ctx context.Context, pageID uuid.UUID) (string, error)
}

// Invalidator drops cached inventory entries for pages.
type Invalidator interface {
	Invalidate(ctx context.Context, pageIDs ...uuid.UUID) error
}

// AddContentRequest places a new record on a page region. A nil Ordering
// appends after the last item of the region across every type.
type AddContentRequest struct {
	Type     string
	PageID   uuid.UUID
	Region   string
	Ordering *int
	Record   Content
}

// UpdateContentRequest replaces the kind specific fields of a record. Page,
// region and ordering are kept; use MoveContent to change them.
type UpdateContentRequest struct {
	Type   string
	Record Content
}

// MoveContentRequest changes the region and ordering of a record.
type MoveContentRequest struct {
	Type     string
	ID       uuid.UUID
	Region   string
	Ordering int
}

type DeleteContentRequest struct {
	Type string
	ID   uuid.UUID
}

// Service manages content records of one base.
type Service struct {
	registry    *Registry
	base        *Base
	store       Store
	pages       PageLookup
	invalidator Invalidator
	now         func() time.Time
	id          func() uuid.UUID
	logger      interfaces.Logger
}

// ServiceOption configures the content service.
type ServiceOption func(*Service)

func WithNow(now func() time.Time) ServiceOption {
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

func WithInvalidator(inv Invalidator) ServiceOption {
	return func(s *Service) {
		s.invalidator = inv
	}
}

func WithServiceLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logging.Ensure(logger)
	}
}

func NewService(registry *Registry, base *Base, store Store, pages PageLookup, opts ...ServiceOption) *Service {
	if registry == nil || base == nil || store == nil {
		panic("contenttypes: service requires registry, base and store")
	}
	s := &Service{
		registry: registry,
		base:     base,
		store:    store,
		pages:    pages,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchemas creates the storage of every type registered on the base.
func (s *Service) EnsureSchemas(ctx context.Context) error {
	for _, t := range s.registry.Types(s.base.Name) {
		if err := s.store.EnsureSchema(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) AddContent(ctx context.Context, req AddContentRequest) (Content, error) {
	t, err := s.registry.Type(s.base.Name, req.Type)
	if err != nil {
		return nil, err
	}
	if req.Record == nil || !t.Owns(req.Record) {
		return nil, ErrItemTypeMismatch
	}
	region := strings.TrimSpace(req.Region)
	if err := s.checkRegion(ctx, req.PageID, region); err != nil {
		return nil, err
	}
	if err := validateRecord(t, req.Record); err != nil {
		return nil, err
	}

	ordering := 0
	if req.Ordering != nil {
		ordering = *req.Ordering
	} else if ordering, err = s.nextOrdering(ctx, req.PageID, region); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := req.Record.ContentItem()
	if item.ID == uuid.Nil {
		item.ID = s.id()
	}
	item.PageID = req.PageID
	item.Region = region
	item.Ordering = ordering
	item.CreatedAt = now
	item.UpdatedAt = now

	created, err := s.store.Create(ctx, t, req.Record)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.PageID)
	s.logger.Debug("content.added", "content_type", t.Name(), "page_id", req.PageID, "region", region, "ordering", ordering)
	return created, nil
}

func (s *Service) UpdateContent(ctx context.Context, req UpdateContentRequest) (Content, error) {
	t, err := s.registry.Type(s.base.Name, req.Type)
	if err != nil {
		return nil, err
	}
	if req.Record == nil || !t.Owns(req.Record) {
		return nil, ErrItemTypeMismatch
	}
	existing, err := s.store.Get(ctx, t, req.Record.ContentItem().ID)
	if err != nil {
		return nil, err
	}
	if err := validateRecord(t, req.Record); err != nil {
		return nil, err
	}

	current := existing.ContentItem()
	item := req.Record.ContentItem()
	item.PageID = current.PageID
	item.Region = current.Region
	item.Ordering = current.Ordering
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, t, req.Record)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, current.PageID)
	return updated, nil
}

func (s *Service) MoveContent(ctx context.Context, req MoveContentRequest) (Content, error) {
	t, err := s.registry.Type(s.base.Name, req.Type)
	if err != nil {
		return nil, err
	}
	record, err := s.store.Get(ctx, t, req.ID)
	if err != nil {
		return nil, err
	}
	item := record.ContentItem()
	region := strings.TrimSpace(req.Region)
	if err := s.checkRegion(ctx, item.PageID, region); err != nil {
		return nil, err
	}
	item.Region = region
	item.Ordering = req.Ordering
	item.UpdatedAt = s.now().UTC()

	moved, err := s.store.Update(ctx, t, record)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, item.PageID)
	return moved, nil
}

func (s *Service) DeleteContent(ctx context.Context, req DeleteContentRequest) error {
	t, err := s.registry.Type(s.base.Name, req.Type)
	if err != nil {
		return err
	}
	record, err := s.store.Get(ctx, t, req.ID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, t, req.ID); err != nil {
		return err
	}
	s.invalidate(ctx, record.ContentItem().PageID)
	return nil
}

// ListPageContent returns every record on a page across all types.
func (s *Service) ListPageContent(ctx context.Context, pageID uuid.UUID) ([]Content, error) {
	var out []Content
	for _, t := range s.registry.Types(s.base.Name) {
		records, err := s.store.ListByPage(ctx, t, pageID)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// DeletePageContent removes the records of pageIDs from every type table.
func (s *Service) DeletePageContent(ctx context.Context, pageIDs []uuid.UUID) (int, error) {
	total := 0
	for _, t := range s.registry.Types(s.base.Name) {
		removed, err := s.store.DeleteByPages(ctx, t, pageIDs)
		if err != nil {
			return total, err
		}
		total += removed
	}
	s.invalidate(ctx, pageIDs...)
	return total, nil
}

func (s *Service) checkRegion(ctx context.Context, pageID uuid.UUID, region string) error {
	if s.pages == nil {
		if _, ok := s.base.Templates.Region(region); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRegion, region)
		}
		return nil
	}
	templateKey, err := s.pages.PageTemplate(ctx, pageID)
	if err != nil {
		return err
	}
	tpl, ok := s.base.Templates.Template(templateKey)
	if !ok || !tpl.HasRegion(region) {
		return fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}
	return nil
}

func (s *Service) nextOrdering(ctx context.Context, pageID uuid.UUID, region string) (int, error) {
	next := 0
	for _, t := range s.registry.Types(s.base.Name) {
		records, err := s.store.List(ctx, t, pageID, region)
		if err != nil {
			return 0, err
		}
		for _, record := range records {
			if ordering := record.ContentItem().Ordering + 1; ordering > next {
				next = ordering
			}
		}
	}
	return next, nil
}

func (s *Service) invalidate(ctx context.Context, pageIDs ...uuid.UUID) {
	if s.invalidator == nil || len(pageIDs) == 0 {
		return
	}
	if err := s.invalidator.Invalidate(ctx, pageIDs...); err != nil {
		s.logger.Warn("content.inventory.invalidate_failed", "error", err)
	}
}

func validateRecord(t *Type, record Content) error {
	validator, ok := record.(Validator)
	if !ok {
		return nil
	}
	if err := validator.Validate(t); err != nil {
		if errors.Is(err, ErrItemTypeMismatch) {
			return err
		}
		return fmt.Errorf("%s: %w", t.Name(), err)
	}
	return nil
}
