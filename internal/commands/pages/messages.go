package pagescmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/pages"
)

const (
	createPageMessageType = "pagetree.pages.create"
	updatePageMessageType = "pagetree.pages.update"
	movePageMessageType   = "pagetree.pages.move"
	deletePageMessageType = "pagetree.pages.delete"
)

// PageFields carries the editable attributes shared by create and update.
type PageFields struct {
	ParentID        *uuid.UUID `json:"parent_id,omitempty"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Active          bool       `json:"active"`
	InNavigation    bool       `json:"in_navigation"`
	OverrideURL     string     `json:"override_url,omitempty"`
	RedirectTo      string     `json:"redirect_to,omitempty"`
	TemplateKey     string     `json:"template_key"`
	Position        int        `json:"position"`
	Language        string     `json:"language,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	PublishAt       *time.Time `json:"publish_at,omitempty"`
	UnpublishAt     *time.Time `json:"unpublish_at,omitempty"`
}

func (f PageFields) input() pages.PageInput {
	return pages.PageInput{
		ParentID:        f.ParentID,
		Title:           f.Title,
		Slug:            f.Slug,
		Active:          f.Active,
		InNavigation:    f.InNavigation,
		OverrideURL:     f.OverrideURL,
		RedirectTo:      f.RedirectTo,
		TemplateKey:     f.TemplateKey,
		Position:        f.Position,
		Language:        f.Language,
		MetaTitle:       f.MetaTitle,
		MetaDescription: f.MetaDescription,
		PublishAt:       f.PublishAt,
		UnpublishAt:     f.UnpublishAt,
	}
}

func (f PageFields) validate(prefix string, errs validation.Errors) {
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = validation.NewError(prefix+".title_required", "title is required")
	}
	if strings.TrimSpace(f.TemplateKey) == "" {
		errs["template_key"] = validation.NewError(prefix+".template_required", "template_key is required")
	}
	if f.ParentID != nil && *f.ParentID == uuid.Nil {
		errs["parent_id"] = validation.NewError(prefix+".parent_id_invalid", "parent_id must be a valid identifier when provided")
	}
	if f.Position < 0 {
		errs["position"] = validation.NewError(prefix+".position_invalid", "position cannot be negative")
	}
	if f.PublishAt != nil && f.UnpublishAt != nil && !f.PublishAt.Before(*f.UnpublishAt) {
		errs["unpublish_at"] = validation.NewError(prefix+".schedule_invalid", "unpublish_at must be after publish_at")
	}
}

// CreatePageCommand adds a page to the tree. A zero ID lets the service
// assign one. Result, when set, receives the saved page.
type CreatePageCommand struct {
	ID uuid.UUID `json:"id,omitempty"`
	PageFields
	Result *pages.SaveResult `json:"-"`
}

func (CreatePageCommand) Type() string { return createPageMessageType }

func (m CreatePageCommand) Validate() error {
	errs := validation.Errors{}
	m.PageFields.validate(createPageMessageType, errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePageCommand replaces the editable attributes of an existing page.
type UpdatePageCommand struct {
	ID uuid.UUID `json:"id"`
	PageFields
	Result *pages.SaveResult `json:"-"`
}

func (UpdatePageCommand) Type() string { return updatePageMessageType }

func (m UpdatePageCommand) Validate() error {
	errs := validation.Errors{}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError(updatePageMessageType+".id_required", "id is required")
	}
	m.PageFields.validate(updatePageMessageType, errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MovePageCommand reparents a page. A nil ParentID moves it to the roots.
type MovePageCommand struct {
	ID       uuid.UUID         `json:"id"`
	ParentID *uuid.UUID        `json:"parent_id,omitempty"`
	Position int               `json:"position"`
	Result   *pages.SaveResult `json:"-"`
}

func (MovePageCommand) Type() string { return movePageMessageType }

func (m MovePageCommand) Validate() error {
	return validation.Errors{
		"id": validation.Validate(m.ID, validation.By(requiredID(movePageMessageType+".id_required", "id is required"))),
		"parent_id": validation.Validate(m.ParentID, validation.By(func(any) error {
			switch {
			case m.ParentID == nil:
				return nil
			case *m.ParentID == uuid.Nil:
				return validation.NewError(movePageMessageType+".parent_id_invalid", "parent_id must be a valid identifier when provided")
			case *m.ParentID == m.ID:
				return validation.NewError(movePageMessageType+".parent_is_self", "a page cannot be its own parent")
			}
			return nil
		})),
		"position": validation.Validate(m.Position, validation.Min(0)),
	}.Filter()
}

// DeletePageCommand removes a page. Cascade also removes its descendants
// and all of their content items.
type DeletePageCommand struct {
	ID      uuid.UUID           `json:"id"`
	Cascade bool                `json:"cascade"`
	Result  *pages.DeleteResult `json:"-"`
}

func (DeletePageCommand) Type() string { return deletePageMessageType }

func (m DeletePageCommand) Validate() error {
	if m.ID == uuid.Nil {
		return validation.Errors{
			"id": validation.NewError(deletePageMessageType+".id_required", "id is required"),
		}
	}
	return nil
}

func requiredID(code, message string) validation.RuleFunc {
	return func(value any) error {
		if id, _ := value.(uuid.UUID); id == uuid.Nil {
			return validation.NewError(code, message)
		}
		return nil
	}
}
