package model

// Collection is an insertion-ordered mapping from digest to Resource.
//
// Keys are unique by construction: pushing a resource whose digest already
// exists replaces the stored resource in place (a merge, not an error; the
// uniqueness *error* is the persistence gateway's job). Reads never mutate
// a Collection, so an immutable snapshot can be shared between concurrent
// readers without coordination.
type Collection struct {
	order []string
	items map[string]*Resource
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{items: make(map[string]*Resource)}
}

// CollectionOf builds a collection from resources in the given order.
func CollectionOf(resources ...*Resource) *Collection {
	c := NewCollection()
	for _, r := range resources {
		c.Push(r)
	}
	return c
}

// Push inserts a resource keyed by its digest. An existing digest keeps its
// position in the iteration order and gets its resource replaced.
func (c *Collection) Push(r *Resource) {
	if _, ok := c.items[r.Digest]; !ok {
		c.order = append(c.order, r.Digest)
	}
	c.items[r.Digest] = r
}

// Get returns the resource stored under the given digest.
func (c *Collection) Get(digest string) (*Resource, bool) {
	r, ok := c.items[digest]
	return r, ok
}

// Len returns the number of distinct digests.
func (c *Collection) Len() int {
	return len(c.order)
}

// Digests returns the digests in insertion order.
func (c *Collection) Digests() []string {
	return append([]string(nil), c.order...)
}

// Resources returns the resources in insertion order.
func (c *Collection) Resources() []*Resource {
	out := make([]*Resource, 0, len(c.order))
	for _, d := range c.order {
		out = append(out, c.items[d])
	}
	return out
}

// Migrate merges another collection's resources into this one. Used to build
// multi-resource batches and fixtures.
func (c *Collection) Migrate(other *Collection) {
	if other == nil {
		return
	}
	for _, r := range other.Resources() {
		c.Push(r)
	}
}

// Equal reports whether both collections contain the same digests mapping to
// field-wise-equal resources. Iteration order does not participate: two
// collections built in different orders from the same records are equal.
func (c *Collection) Equal(other *Collection) bool {
	if other == nil || c.Len() != other.Len() {
		return false
	}
	for d, r := range c.items {
		o, ok := other.items[d]
		if !ok || !r.EqualContent(o) {
			return false
		}
	}
	return true
}
