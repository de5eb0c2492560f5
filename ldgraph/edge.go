package ldgraph

// Edge is a handle to one relationship in an Index. Edges are immutable: to
// change a label or endpoint, remove the edge and create a new one.
//
// The endpoints are resolved against the index on every call, so an Edge
// never hands out a vertex that has since been removed.
type Edge struct {
	index *Index
	key   edgeKey
}

// Label returns the compacted edge label.
func (e *Edge) Label() string { return e.index.resolver.Compact(e.key.label) }

// LabelIRI returns the expanded edge label.
func (e *Edge) LabelIRI() string { return e.key.label }

// FromID returns the compacted id of the source vertex.
func (e *Edge) FromID() string { return e.index.resolver.Compact(e.key.from) }

// ToID returns the compacted id of the target vertex.
func (e *Edge) ToID() string { return e.index.resolver.Compact(e.key.to) }

// From returns the source vertex, or nil if it no longer exists.
func (e *Edge) From() *Vertex { return e.index.vertexHandle(e.key.from) }

// To returns the target vertex, or nil if it no longer exists.
func (e *Edge) To() *Vertex { return e.index.vertexHandle(e.key.to) }

// Exists reports whether the edge is still present in its index.
func (e *Edge) Exists() bool {
	_, ok := e.index.edges[e.key]
	return ok
}

// IsType reports whether the edge is an @type edge.
func (e *Edge) IsType() bool { return e.key.label == typeKeyword }

func (e *Edge) String() string {
	return e.FromID() + " -[" + e.Label() + "]-> " + e.ToID()
}

// EdgeFilter selects edges in RemoveIncoming and RemoveOutgoing.
type EdgeFilter func(*Edge) bool

// FromVertex matches edges whose source is id (compact or expanded).
func FromVertex(id string) EdgeFilter {
	return func(e *Edge) bool { return e.index.resolver.Equal(e.key.from, id) }
}

// ToVertex matches edges whose target is id (compact or expanded).
func ToVertex(id string) EdgeFilter {
	return func(e *Edge) bool { return e.index.resolver.Equal(e.key.to, id) }
}

func (ix *Index) vertexHandle(iri string) *Vertex {
	if _, ok := ix.vertices[iri]; !ok {
		return nil
	}
	return &Vertex{index: ix, iri: iri}
}
