package model

// children is an insertion-ordered arena of entities owned by an aggregate.
// Ids are unique within the owner; removal keeps the order of the rest.
type children[T any] struct {
	order []string
	byID  map[string]T
}

func (c *children[T]) add(id string, v T) {
	if c.byID == nil {
		c.byID = make(map[string]T)
	}
	if _, exists := c.byID[id]; !exists {
		c.order = append(c.order, id)
	}
	c.byID[id] = v
}

func (c *children[T]) remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *children[T]) get(id string) (T, bool) {
	v, ok := c.byID[id]
	return v, ok
}

func (c *children[T]) len() int { return len(c.order) }

// values returns the entities in insertion order.
func (c *children[T]) values() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
