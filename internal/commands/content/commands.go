package contentcmd

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/commands"
	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

const (
	moveContentMessageType   = "pagetree.content.move"
	deleteContentMessageType = "pagetree.content.delete"
)

// ContentService is the subset of contenttypes.Service used by the handlers.
type ContentService interface {
	MoveContent(ctx context.Context, req contenttypes.MoveContentRequest) (contenttypes.Content, error)
	DeleteContent(ctx context.Context, req contenttypes.DeleteContentRequest) error
}

// MoveContentCommand places an item on another region of its page.
type MoveContentCommand struct {
	ContentType string    `json:"content_type"`
	ID          uuid.UUID `json:"id"`
	Region      string    `json:"region"`
	Ordering    int       `json:"ordering"`
}

func (MoveContentCommand) Type() string { return moveContentMessageType }

func (m MoveContentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.ContentType) == "" {
		errs["content_type"] = validation.NewError(moveContentMessageType+".content_type_required", "content_type is required")
	}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError(moveContentMessageType+".id_required", "id is required")
	}
	if strings.TrimSpace(m.Region) == "" {
		errs["region"] = validation.NewError(moveContentMessageType+".region_required", "region is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeleteContentCommand struct {
	ContentType string    `json:"content_type"`
	ID          uuid.UUID `json:"id"`
}

func (DeleteContentCommand) Type() string { return deleteContentMessageType }

func (m DeleteContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ContentType, validation.Required),
		validation.Field(&m.ID, validation.By(func(any) error {
			if m.ID == uuid.Nil {
				return validation.NewError(deleteContentMessageType+".id_required", "id is required")
			}
			return nil
		})),
	)
}

func classifyContentError(err error) error {
	switch {
	case errors.Is(err, contenttypes.ErrUnknownRegion):
		return commands.ValidationFailure(err, "CONTENT_UNKNOWN_REGION")
	case errors.Is(err, contenttypes.ErrTypeNotFound):
		return commands.ValidationFailure(err, "CONTENT_TYPE_NOT_FOUND")
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return commands.ValidationFailure(err, "CONTENT_VALIDATION_FAILED")
	}
	return err
}

type MoveContentHandler struct {
	inner *commands.Handler[MoveContentCommand]
}

func NewMoveContentHandler(service ContentService, logger interfaces.Logger, opts ...commands.HandlerOption[MoveContentCommand]) *MoveContentHandler {
	exec := func(ctx context.Context, msg MoveContentCommand) error {
		_, err := service.MoveContent(ctx, contenttypes.MoveContentRequest{
			Type:     msg.ContentType,
			ID:       msg.ID,
			Region:   msg.Region,
			Ordering: msg.Ordering,
		})
		return err
	}
	handlerOpts := []commands.HandlerOption[MoveContentCommand]{
		commands.WithLogger[MoveContentCommand](logger),
		commands.WithOperation[MoveContentCommand]("content.move"),
		commands.WithMessageFields(func(msg MoveContentCommand) map[string]any {
			return map[string]any{"content_type": msg.ContentType, "item_id": msg.ID, "region": msg.Region}
		}),
		commands.WithErrorClassifier[MoveContentCommand](classifyContentError),
	}
	return &MoveContentHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *MoveContentHandler) Execute(ctx context.Context, msg MoveContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

type DeleteContentHandler struct {
	inner *commands.Handler[DeleteContentCommand]
}

func NewDeleteContentHandler(service ContentService, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteContentCommand]) *DeleteContentHandler {
	exec := func(ctx context.Context, msg DeleteContentCommand) error {
		return service.DeleteContent(ctx, contenttypes.DeleteContentRequest{Type: msg.ContentType, ID: msg.ID})
	}
	handlerOpts := []commands.HandlerOption[DeleteContentCommand]{
		commands.WithLogger[DeleteContentCommand](logger),
		commands.WithOperation[DeleteContentCommand]("content.delete"),
		commands.WithMessageFields(func(msg DeleteContentCommand) map[string]any {
			return map[string]any{"content_type": msg.ContentType, "item_id": msg.ID}
		}),
		commands.WithErrorClassifier[DeleteContentCommand](classifyContentError),
	}
	return &DeleteContentHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *DeleteContentHandler) Execute(ctx context.Context, msg DeleteContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
