package ua

// TypeDescriptor associates a namespace-0 binary encoding id with a
// constructor for its Go representation. This is the registry the spec's
// §3 Configuration describes as merging `custom_data_types` into the
// decoder: a Client starts from DefaultRegistry() and layers any
// additional descriptors supplied via Option on top.
type TypeDescriptor struct {
	ID  uint32
	New func() interface{}
}

// Registry is a lookup table from binary encoding id to TypeDescriptor. It
// is only consulted for values carried behind an interface{} slot
// (ExtensionObject bodies, notification payloads) -- everything else is a
// concretely typed Go struct the caller already knows how to decode into.
type Registry struct {
	byID map[uint32]TypeDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]TypeDescriptor)}
}

// Register adds or replaces a descriptor.
func (r *Registry) Register(d TypeDescriptor) {
	r.byID[d.ID] = d
}

// Merge copies every descriptor of other into r, letting other's entries
// win on id collisions (used to layer the CustomDataTypes option's registry
// over the default registry).
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	for id, d := range other.byID {
		r.byID[id] = d
	}
}

// Lookup returns the descriptor registered for id, if any.
func (r *Registry) Lookup(id uint32) (TypeDescriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Clone returns an independent copy so a shared default registry can be
// handed to multiple clients without cross-contamination.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for id, d := range r.byID {
		c.byID[id] = d
	}
	return c
}
