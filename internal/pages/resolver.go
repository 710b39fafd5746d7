package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// PageRefPrefix marks a RedirectTo value that points at another page.
const PageRefPrefix = "page:"

// Match is the outcome of resolving a request path.
type Match struct {
	Page *Page
	// ExtraPath is the unmatched suffix of the request path, without a
	// leading slash and with a trailing one ("c/"). Empty on exact matches.
	ExtraPath string

	redirect string
}

// Redirect returns the redirect target of the matched page. Best matches
// never redirect.
func (m *Match) Redirect() (string, bool) {
	if m == nil || m.ExtraPath != "" || m.redirect == "" {
		return "", false
	}
	return m.redirect, true
}

// Exact reports whether the whole path matched.
func (m *Match) Exact() bool {
	return m != nil && m.ExtraPath == ""
}

type Resolver struct {
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger
}

type ResolverOption func(*Resolver)

func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func WithResolverLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logging.Ensure(logger)
	}
}

func NewResolver(repo Repository, opts ...ResolverOption) *Resolver {
	r := &Resolver{repo: repo, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Segments splits path into its non-empty segments.
func Segments(path string) []string {
	var out []string
	for _, part := range strings.Split(path, "/") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizePath returns path in cached URL form: "/a/b/" or "/".
func NormalizePath(path string) string {
	segments := Segments(path)
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/") + "/"
}

// CandidatePaths lists the cached URLs that can match path, longest first,
// ending with "/".
func CandidatePaths(path string) []string {
	segments := Segments(path)
	out := make([]string, 0, len(segments)+1)
	for n := len(segments); n > 0; n-- {
		out = append(out, "/"+strings.Join(segments[:n], "/")+"/")
	}
	return append(out, "/")
}

// Resolve finds the live page whose cached URL equals path or, failing
// that, the live page with the longest cached URL that is a prefix of path.
// Pages count as live only when all their ancestors are live too.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Match, error) {
	candidates := CandidatePaths(path)
	pages, err := r.repo.ListByCachedURLs(ctx, candidates)
	if err != nil {
		return nil, err
	}

	now := r.now()
	byURL := make(map[string]*Page, len(pages))
	for _, page := range pages {
		if page.IsLive(now) {
			byURL[page.CachedURL] = page
		}
	}

	segments := Segments(path)
	for i, candidate := range candidates {
		page, ok := byURL[candidate]
		if !ok {
			continue
		}
		live, err := r.ancestorsLive(ctx, page, now)
		if err != nil {
			return nil, err
		}
		if !live {
			continue
		}
		match := &Match{Page: page}
		if dropped := segments[len(segments)-i:]; len(dropped) > 0 {
			match.ExtraPath = strings.Join(dropped, "/") + "/"
		}
		if match.ExtraPath == "" && page.RedirectTo != "" {
			target, err := r.redirectTarget(ctx, page.RedirectTo)
			switch {
			case errors.Is(err, ErrPageNotFound):
				r.logger.Warn("resolver.redirect.dangling", "page_id", page.ID, "redirect_to", page.RedirectTo)
			case err != nil:
				return nil, err
			default:
				match.redirect = target
			}
		}
		r.logger.Debug("resolver.match",
			"path", path,
			"page_id", page.ID,
			"cached_url", page.CachedURL,
			"extra_path", match.ExtraPath,
		)
		return match, nil
	}
	return nil, &NotFoundError{Key: NormalizePath(path)}
}

// ResolveExact returns the live page whose cached URL equals path.
func (r *Resolver) ResolveExact(ctx context.Context, path string) (*Page, error) {
	normalized := NormalizePath(path)
	pages, err := r.repo.ListByCachedURLs(ctx, []string{normalized})
	if err != nil {
		return nil, err
	}
	now := r.now()
	for _, page := range pages {
		if !page.IsLive(now) {
			continue
		}
		live, err := r.ancestorsLive(ctx, page, now)
		if err != nil {
			return nil, err
		}
		if live {
			return page, nil
		}
	}
	return nil, &NotFoundError{Key: normalized}
}

// ancestorsLive reports whether every ancestor of page is live at now. A
// page below an inactive or unpublished ancestor is not served.
func (r *Resolver) ancestorsLive(ctx context.Context, page *Page, now time.Time) (bool, error) {
	current := page
	for !current.IsRoot() {
		parent, err := r.repo.GetByID(ctx, *current.ParentID)
		if errors.Is(err, ErrPageNotFound) {
			r.logger.Warn("resolver.parent.missing", "page_id", current.ID, "parent_id", *current.ParentID)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !parent.IsLive(now) {
			return false, nil
		}
		current = parent
	}
	return true, nil
}

// redirectTarget turns a RedirectTo value into a URL. Page references are
// replaced by the referenced page's cached URL.
func (r *Resolver) redirectTarget(ctx context.Context, value string) (string, error) {
	ref, ok := strings.CutPrefix(value, PageRefPrefix)
	if !ok {
		return value, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", &NotFoundError{Key: value}
	}
	target, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return "", &NotFoundError{Key: value}
		}
		return "", err
	}
	return target.CachedURL, nil
}
