package pagescmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/commands"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// PageService is the subset of pages.Service used by the handlers.
type PageService interface {
	Create(ctx context.Context, req pages.CreatePageRequest) (*pages.SaveResult, error)
	Update(ctx context.Context, req pages.UpdatePageRequest) (*pages.SaveResult, error)
	Move(ctx context.Context, req pages.MovePageRequest) (*pages.SaveResult, error)
	Delete(ctx context.Context, req pages.DeletePageRequest) (*pages.DeleteResult, error)
}

var ruleCodes = []struct {
	err  error
	code string
}{
	{pages.ErrURLCollision, "PAGE_URL_COLLISION"},
	{pages.ErrInvalidMove, "PAGE_INVALID_MOVE"},
	{pages.ErrPageParentCycle, "PAGE_PARENT_CYCLE"},
	{pages.ErrParentNotFound, "PAGE_PARENT_NOT_FOUND"},
	{pages.ErrParentIsLeaf, "PAGE_PARENT_IS_LEAF"},
	{pages.ErrLeafHasChildren, "PAGE_LEAF_HAS_CHILDREN"},
	{pages.ErrPageHasChildren, "PAGE_HAS_CHILDREN"},
	{pages.ErrSingletonTemplate, "PAGE_SINGLETON_TEMPLATE"},
	{pages.ErrTemplateUnknown, "PAGE_TEMPLATE_UNKNOWN"},
	{pages.ErrScheduleWindowInvalid, "PAGE_SCHEDULE_INVALID"},
	{pages.ErrInvalidPage, "PAGE_INVALID"},
}

// classifyPageError marks tree rule violations as validation failures.
func classifyPageError(err error) error {
	for _, rule := range ruleCodes {
		if errors.Is(err, rule.err) {
			return commands.ValidationFailure(err, rule.code)
		}
	}
	var verr *pages.ValidationError
	if errors.As(err, &verr) {
		return commands.ValidationFailure(err, "PAGE_VALIDATION_FAILED")
	}
	return err
}

func pageOptions[T command.Message](logger interfaces.Logger, operation string, fields func(T) map[string]any) []commands.HandlerOption[T] {
	return []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
		commands.WithMessageFields(fields),
		commands.WithErrorClassifier[T](classifyPageError),
	}
}

type CreatePageHandler struct {
	inner *commands.Handler[CreatePageCommand]
}

func NewCreatePageHandler(service PageService, logger interfaces.Logger, opts ...commands.HandlerOption[CreatePageCommand]) *CreatePageHandler {
	exec := func(ctx context.Context, msg CreatePageCommand) error {
		result, err := service.Create(ctx, pages.CreatePageRequest{ID: msg.ID, PageInput: msg.input()})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}
	handlerOpts := pageOptions(logger, "pages.create", func(msg CreatePageCommand) map[string]any {
		return fieldMap(msg.ID, msg.ParentID, "template", msg.TemplateKey, "slug", msg.Slug)
	})
	return &CreatePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *CreatePageHandler) Execute(ctx context.Context, msg CreatePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

type UpdatePageHandler struct {
	inner *commands.Handler[UpdatePageCommand]
}

func NewUpdatePageHandler(service PageService, logger interfaces.Logger, opts ...commands.HandlerOption[UpdatePageCommand]) *UpdatePageHandler {
	exec := func(ctx context.Context, msg UpdatePageCommand) error {
		result, err := service.Update(ctx, pages.UpdatePageRequest{ID: msg.ID, PageInput: msg.input()})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}
	handlerOpts := pageOptions(logger, "pages.update", func(msg UpdatePageCommand) map[string]any {
		return fieldMap(msg.ID, msg.ParentID, "template", msg.TemplateKey, "slug", msg.Slug)
	})
	return &UpdatePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *UpdatePageHandler) Execute(ctx context.Context, msg UpdatePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

type MovePageHandler struct {
	inner *commands.Handler[MovePageCommand]
}

func NewMovePageHandler(service PageService, logger interfaces.Logger, opts ...commands.HandlerOption[MovePageCommand]) *MovePageHandler {
	exec := func(ctx context.Context, msg MovePageCommand) error {
		result, err := service.Move(ctx, pages.MovePageRequest{ID: msg.ID, ParentID: msg.ParentID, Position: msg.Position})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}
	handlerOpts := pageOptions(logger, "pages.move", func(msg MovePageCommand) map[string]any {
		return fieldMap(msg.ID, msg.ParentID, "position", msg.Position)
	})
	return &MovePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *MovePageHandler) Execute(ctx context.Context, msg MovePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

type DeletePageHandler struct {
	inner *commands.Handler[DeletePageCommand]
}

func NewDeletePageHandler(service PageService, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePageCommand]) *DeletePageHandler {
	exec := func(ctx context.Context, msg DeletePageCommand) error {
		result, err := service.Delete(ctx, pages.DeletePageRequest{ID: msg.ID, Cascade: msg.Cascade})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *result
		}
		return nil
	}
	handlerOpts := pageOptions(logger, "pages.delete", func(msg DeletePageCommand) map[string]any {
		return fieldMap(msg.ID, nil, "cascade", msg.Cascade)
	})
	return &DeletePageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *DeletePageHandler) Execute(ctx context.Context, msg DeletePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// Handlers groups the page command handlers.
type Handlers struct {
	Create *CreatePageHandler
	Update *UpdatePageHandler
	Move   *MovePageHandler
	Delete *DeletePageHandler
}

func NewHandlers(service PageService, logger interfaces.Logger) *Handlers {
	logger = commands.EnsureLogger(logger)
	return &Handlers{
		Create: NewCreatePageHandler(service, logger),
		Update: NewUpdatePageHandler(service, logger),
		Move:   NewMovePageHandler(service, logger),
		Delete: NewDeletePageHandler(service, logger),
	}
}

func fieldMap(id uuid.UUID, parent *uuid.UUID, kv ...any) map[string]any {
	fields := map[string]any{}
	if id != uuid.Nil {
		fields["page_id"] = id
	}
	if parent != nil && *parent != uuid.Nil {
		fields["parent_id"] = *parent
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		if key == "" {
			continue
		}
		if s, ok := kv[i+1].(string); ok && s == "" {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}
