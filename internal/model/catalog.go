package model

// ModelDescriptor describes one upstream model users can pick.
type ModelDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Premium     bool   `json:"premium"` // requires an active subscription
}

// Catalog is the static, read-only list of models offered by the gateway.
type Catalog struct {
	models []ModelDescriptor
	byID   map[string]int
}

// NewCatalog builds a catalog. Later duplicates of an id are ignored.
func NewCatalog(models ...ModelDescriptor) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(models))}
	for _, m := range models {
		if _, dup := c.byID[m.ID]; dup {
			continue
		}
		c.byID[m.ID] = len(c.models)
		c.models = append(c.models, m)
	}
	return c
}

// DefaultCatalog returns the models served by the mlvoca upstream.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		ModelDescriptor{
			ID:          "tinyllama",
			Name:        "TinyLlama",
			Description: "A lightweight language model suitable for quick tasks.",
			Premium:     false,
		},
		ModelDescriptor{
			ID:          "deepseek-r1:1.5b",
			Name:        "DeepSeek R1 (1.5b)",
			Description: "A more capable model with better reasoning abilities.",
			Premium:     true,
		},
	)
}

// Lookup returns the descriptor for id.
func (c *Catalog) Lookup(id string) (ModelDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return ModelDescriptor{}, false
	}
	return c.models[i], true
}

// List returns a copy of all descriptors in catalog order.
func (c *Catalog) List() []ModelDescriptor {
	out := make([]ModelDescriptor, len(c.models))
	copy(out, c.models)
	return out
}
