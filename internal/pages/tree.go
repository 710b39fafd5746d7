package pages

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type node struct {
	page     *Page
	parent   int
	children []int
	removed  bool
}

// Tree is an arena of pages addressed by id. Nodes hold indices of their
// parent and children; a parent index of -1 marks a root.
type Tree struct {
	nodes []node
	index map[uuid.UUID]int
	roots []int
}

// BuildTree links pages into a tree. Every parent must be present and the
// parent chain must be acyclic.
func BuildTree(pages []*Page) (*Tree, error) {
	t := &Tree{index: make(map[uuid.UUID]int, len(pages))}
	for _, page := range pages {
		if page == nil {
			continue
		}
		t.index[page.ID] = len(t.nodes)
		t.nodes = append(t.nodes, node{page: page, parent: -1})
	}
	for i := range t.nodes {
		page := t.nodes[i].page
		if page.IsRoot() {
			t.roots = append(t.roots, i)
			continue
		}
		parent, ok := t.index[*page.ParentID]
		if !ok {
			return nil, &NotFoundError{Key: page.ParentID.String()}
		}
		t.nodes[i].parent = parent
		t.nodes[parent].children = append(t.nodes[parent].children, i)
	}
	for i := range t.nodes {
		if t.hasCycle(i) {
			return nil, ErrPageParentCycle
		}
		t.sortChildren(i)
	}
	t.sortIndices(t.roots)
	return t, nil
}

func (t *Tree) hasCycle(start int) bool {
	seen := 0
	for cur := t.nodes[start].parent; cur >= 0; cur = t.nodes[cur].parent {
		if cur == start || seen > len(t.nodes) {
			return true
		}
		seen++
	}
	return false
}

func (t *Tree) sortChildren(i int) {
	t.sortIndices(t.nodes[i].children)
}

// sortIndices orders siblings by position, then slug.
func (t *Tree) sortIndices(indices []int) {
	sort.SliceStable(indices, func(a, b int) bool {
		pa, pb := t.nodes[indices[a]].page, t.nodes[indices[b]].page
		if pa.Position != pb.Position {
			return pa.Position < pb.Position
		}
		return pa.Slug < pb.Slug
	})
}

func (t *Tree) lookup(id uuid.UUID) (int, bool) {
	i, ok := t.index[id]
	if !ok || t.nodes[i].removed {
		return 0, false
	}
	return i, true
}

func (t *Tree) pagesAt(indices []int) []*Page {
	out := make([]*Page, 0, len(indices))
	for _, i := range indices {
		out = append(out, t.nodes[i].page)
	}
	return out
}

// Len returns the number of pages in the tree.
func (t *Tree) Len() int { return len(t.index) }

func (t *Tree) Get(id uuid.UUID) (*Page, bool) {
	i, ok := t.lookup(id)
	if !ok {
		return nil, false
	}
	return t.nodes[i].page, true
}

func (t *Tree) Parent(id uuid.UUID) (*Page, bool) {
	i, ok := t.lookup(id)
	if !ok || t.nodes[i].parent < 0 {
		return nil, false
	}
	return t.nodes[t.nodes[i].parent].page, true
}

func (t *Tree) Roots() []*Page {
	return t.pagesAt(t.roots)
}

// Children returns the direct children of id in sibling order. uuid.Nil
// returns the roots.
func (t *Tree) Children(id uuid.UUID) []*Page {
	if id == uuid.Nil {
		return t.Roots()
	}
	i, ok := t.lookup(id)
	if !ok {
		return nil
	}
	return t.pagesAt(t.nodes[i].children)
}

// NavigationChildren returns the children of id that are live at now and
// flagged for navigation.
func (t *Tree) NavigationChildren(id uuid.UUID, now time.Time) []*Page {
	var out []*Page
	for _, child := range t.Children(id) {
		if child.InNavigation && child.IsLive(now) {
			out = append(out, child)
		}
	}
	return out
}

// Ancestors returns the parent chain of id, root first, excluding id.
func (t *Tree) Ancestors(id uuid.UUID) []*Page {
	i, ok := t.lookup(id)
	if !ok {
		return nil
	}
	var chain []*Page
	for cur := t.nodes[i].parent; cur >= 0; cur = t.nodes[cur].parent {
		chain = append(chain, t.nodes[cur].page)
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

// Descendants returns every page below id breadth first, parents before
// their children.
func (t *Tree) Descendants(id uuid.UUID) []*Page {
	i, ok := t.lookup(id)
	if !ok {
		return nil
	}
	var out []*Page
	queue := append([]int(nil), t.nodes[i].children...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, t.nodes[cur].page)
		queue = append(queue, t.nodes[cur].children...)
	}
	return out
}

// IsDescendant reports whether id sits strictly below ancestor.
func (t *Tree) IsDescendant(id, ancestor uuid.UUID) bool {
	i, ok := t.lookup(id)
	if !ok {
		return false
	}
	target, ok := t.lookup(ancestor)
	if !ok {
		return false
	}
	for cur := t.nodes[i].parent; cur >= 0; cur = t.nodes[cur].parent {
		if cur == target {
			return true
		}
	}
	return false
}

// Pages returns every page depth first in sibling order.
func (t *Tree) Pages() []*Page {
	out := make([]*Page, 0, t.Len())
	var walk func(indices []int)
	walk = func(indices []int) {
		for _, i := range indices {
			out = append(out, t.nodes[i].page)
			walk(t.nodes[i].children)
		}
	}
	walk(t.roots)
	return out
}

// Put inserts page or replaces the stored page with the same id, relinking
// it under its parent. The parent must exist and must not be page itself or
// one of its descendants.
func (t *Tree) Put(page *Page) error {
	newParent := -1
	if !page.IsRoot() {
		p, ok := t.lookup(*page.ParentID)
		if !ok {
			return ErrParentNotFound
		}
		newParent = p
	}

	i, exists := t.lookup(page.ID)
	if exists && newParent >= 0 {
		if newParent == i || t.IsDescendant(*page.ParentID, page.ID) {
			return ErrInvalidMove
		}
	}

	if !exists {
		i = len(t.nodes)
		t.nodes = append(t.nodes, node{page: page, parent: -1})
		t.index[page.ID] = i
	} else {
		t.detach(i)
		t.nodes[i].page = page
	}

	t.nodes[i].parent = newParent
	if newParent < 0 {
		t.roots = append(t.roots, i)
		t.sortIndices(t.roots)
	} else {
		t.nodes[newParent].children = append(t.nodes[newParent].children, i)
		t.sortChildren(newParent)
	}
	return nil
}

// Remove drops id and its subtree, returning the removed pages top-down.
func (t *Tree) Remove(id uuid.UUID) []*Page {
	i, ok := t.lookup(id)
	if !ok {
		return nil
	}
	removed := append([]*Page{t.nodes[i].page}, t.Descendants(id)...)
	t.detach(i)
	for _, page := range removed {
		idx := t.index[page.ID]
		t.nodes[idx].removed = true
		delete(t.index, page.ID)
	}
	return removed
}

func (t *Tree) detach(i int) {
	siblings := &t.roots
	if parent := t.nodes[i].parent; parent >= 0 {
		siblings = &t.nodes[parent].children
	}
	for k, idx := range *siblings {
		if idx == i {
			*siblings = append((*siblings)[:k], (*siblings)[k+1:]...)
			break
		}
	}
	t.nodes[i].parent = -1
}

// RecomputeSubtree refreshes CachedURL and Level of id and everything below
// it, parents first. It returns the pages whose values changed.
func (t *Tree) RecomputeSubtree(id uuid.UUID) []*Page {
	i, ok := t.lookup(id)
	if !ok {
		return nil
	}
	var changed []*Page
	queue := []int{i}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		page := t.nodes[cur].page
		var parent *Page
		level := 0
		if p := t.nodes[cur].parent; p >= 0 {
			parent = t.nodes[p].page
			level = parent.Level + 1
		}
		url := ComputeCachedURL(page, parent)
		if url != page.CachedURL || level != page.Level {
			page.CachedURL = url
			page.Level = level
			changed = append(changed, page)
		}
		queue = append(queue, t.nodes[cur].children...)
	}
	return changed
}
