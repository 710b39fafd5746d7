package pages

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a node of the site tree. CachedURL and Level are derived from the
// parent chain and maintained by the service.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID              uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ParentID        *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Title           string     `bun:"title,notnull" json:"title"`
	Slug            string     `bun:"slug,notnull" json:"slug"`
	Active          bool       `bun:"active,notnull" json:"active"`
	InNavigation    bool       `bun:"in_navigation,notnull" json:"in_navigation"`
	OverrideURL     string     `bun:"override_url" json:"override_url,omitempty"`
	RedirectTo      string     `bun:"redirect_to" json:"redirect_to,omitempty"`
	CachedURL       string     `bun:"cached_url,notnull" json:"cached_url"`
	TemplateKey     string     `bun:"template_key,notnull" json:"template_key"`
	Position        int        `bun:"position,notnull" json:"position"`
	Level           int        `bun:"level,notnull" json:"level"`
	Language        string     `bun:"language" json:"language,omitempty"`
	MetaTitle       string     `bun:"meta_title" json:"meta_title,omitempty"`
	MetaDescription string     `bun:"meta_description" json:"meta_description,omitempty"`
	PublishAt       *time.Time `bun:"publish_at,nullzero" json:"publish_at,omitempty"`
	UnpublishAt     *time.Time `bun:"unpublish_at,nullzero" json:"unpublish_at,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsRoot reports whether the page has no parent.
func (p *Page) IsRoot() bool {
	return p.ParentID == nil || *p.ParentID == uuid.Nil
}

// IsLive reports whether the page is active and inside its publication
// window at now.
func (p *Page) IsLive(now time.Time) bool {
	if p == nil || !p.Active {
		return false
	}
	if p.PublishAt != nil && now.Before(*p.PublishAt) {
		return false
	}
	if p.UnpublishAt != nil && !now.Before(*p.UnpublishAt) {
		return false
	}
	return true
}

// ComputeCachedURL derives the URL of page under parent. A non-empty override
// wins; otherwise the slug is appended to the parent URL.
func ComputeCachedURL(page, parent *Page) string {
	if override := strings.TrimSpace(page.OverrideURL); override != "" {
		return override
	}
	prefix := "/"
	if parent != nil {
		prefix = parent.CachedURL
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
	}
	slug := strings.Trim(page.Slug, "/")
	if slug == "" {
		return prefix
	}
	return prefix + slug + "/"
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	dst := *src
	if src.ParentID != nil {
		id := *src.ParentID
		dst.ParentID = &id
	}
	if src.PublishAt != nil {
		ts := *src.PublishAt
		dst.PublishAt = &ts
	}
	if src.UnpublishAt != nil {
		ts := *src.UnpublishAt
		dst.UnpublishAt = &ts
	}
	return &dst
}

func parentKey(p *Page) uuid.UUID {
	if p.IsRoot() {
		return uuid.Nil
	}
	return *p.ParentID
}
