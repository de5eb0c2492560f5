package ldgraph

import (
	"sort"

	"go.uber.org/zap"
)

// edgeKey is the composite identity of an edge. All parts are expanded IRIs.
type edgeKey struct {
	label string
	from  string
	to    string
}

// bucketKey addresses a per-vertex edge bucket. An empty label addresses the
// bucket holding every edge of the vertex in that direction.
type bucketKey struct {
	vertex string
	label  string
}

type vertexRecord struct {
	id        string
	seq       uint64
	attrs     map[string][]AttributeValue
	attrOrder []string
}

// Neighbor pairs an edge with the vertex at its far end.
type Neighbor struct {
	Edge   *Edge
	Vertex *Vertex
}

// Index is the canonical store of vertices and edges, keyed by expanded IRIs.
//
// Besides the primary vertex and edge maps it maintains edges by label and,
// per vertex, incoming and outgoing edges both unfiltered and by label. Every
// mutation patches all of them before returning.
//
// Index is not safe for concurrent use.
type Index struct {
	resolver *IRIResolver
	log      *zap.Logger

	seq      uint64
	vertices map[string]*vertexRecord
	edges    map[edgeKey]uint64 // edge -> insertion sequence

	byLabel  map[string][]edgeKey
	incoming map[bucketKey][]edgeKey
	outgoing map[bucketKey][]edgeKey
}

// NewIndex creates an empty index. A nil logger disables logging.
func NewIndex(logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		resolver: NewIRIResolver(),
		log:      logger.Named("index"),
		vertices: make(map[string]*vertexRecord),
		edges:    make(map[edgeKey]uint64),
		byLabel:  make(map[string][]edgeKey),
		incoming: make(map[bucketKey][]edgeKey),
		outgoing: make(map[bucketKey][]edgeKey),
	}
}

// Resolver returns the prefix resolver owned by the index.
func (ix *Index) Resolver() *IRIResolver { return ix.resolver }

// VertexCount returns the number of vertices.
func (ix *Index) VertexCount() int { return len(ix.vertices) }

// EdgeCount returns the number of edges.
func (ix *Index) EdgeCount() int { return len(ix.edges) }

// AddVertex creates a vertex with the given compact or expanded id.
func (ix *Index) AddVertex(id string) (*Vertex, error) {
	iri, err := ix.normalize(id, "vertex id")
	if err != nil {
		return nil, err
	}
	if iri == typeKeyword {
		return nil, invalidArgument("vertex id %q is reserved", iri)
	}
	if _, ok := ix.vertices[iri]; ok {
		return nil, &VertexError{ID: iri, Err: ErrDuplicateVertex}
	}
	ix.seq++
	ix.vertices[iri] = &vertexRecord{
		id:    iri,
		seq:   ix.seq,
		attrs: make(map[string][]AttributeValue),
	}
	ix.log.Debug("vertex added", zap.String("id", iri))
	return &Vertex{index: ix, iri: iri}, nil
}

// RemoveVertex removes a vertex and every edge that starts or ends at it.
func (ix *Index) RemoveVertex(id string) error {
	iri, err := ix.normalize(id, "vertex id")
	if err != nil {
		return err
	}
	if _, ok := ix.vertices[iri]; !ok {
		return &VertexError{ID: iri, Err: ErrVertexNotFound}
	}
	all := bucketKey{vertex: iri}
	touching := make([]edgeKey, 0, len(ix.incoming[all])+len(ix.outgoing[all]))
	touching = append(touching, ix.incoming[all]...)
	touching = append(touching, ix.outgoing[all]...)
	for _, key := range touching {
		ix.removeEdge(key)
	}
	delete(ix.vertices, iri)
	ix.log.Debug("vertex removed", zap.String("id", iri), zap.Int("edges", len(touching)))
	return nil
}

// GetVertex returns the vertex with the given id, or nil if it does not exist.
// Malformed ids are reported as errors.
func (ix *Index) GetVertex(id string) (*Vertex, error) {
	iri, err := ix.normalize(id, "vertex id")
	if err != nil {
		return nil, err
	}
	if _, ok := ix.vertices[iri]; !ok {
		return nil, nil
	}
	return &Vertex{index: ix, iri: iri}, nil
}

// HasVertex reports whether a vertex with the given id exists.
func (ix *Index) HasVertex(id string) (bool, error) {
	iri, err := ix.normalize(id, "vertex id")
	if err != nil {
		return false, err
	}
	_, ok := ix.vertices[iri]
	return ok, nil
}

// Vertices returns every vertex in insertion order.
func (ix *Index) Vertices() []*Vertex {
	records := make([]*vertexRecord, 0, len(ix.vertices))
	for _, rec := range ix.vertices {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	out := make([]*Vertex, len(records))
	for i, rec := range records {
		out[i] = &Vertex{index: ix, iri: rec.id}
	}
	return out
}

// AddEdge creates the edge from -[label]-> to. Both vertices must exist.
func (ix *Index) AddEdge(label, from, to string) (*Edge, error) {
	l, err := ix.normalize(label, "edge label")
	if err != nil {
		return nil, err
	}
	f, err := ix.normalize(from, "edge source")
	if err != nil {
		return nil, err
	}
	t, err := ix.normalize(to, "edge target")
	if err != nil {
		return nil, err
	}
	if _, ok := ix.vertices[f]; !ok {
		return nil, &VertexError{ID: f, Err: ErrVertexNotFound}
	}
	if _, ok := ix.vertices[t]; !ok {
		return nil, &VertexError{ID: t, Err: ErrVertexNotFound}
	}
	key := edgeKey{label: l, from: f, to: t}
	if f == t {
		return nil, &EdgeError{Label: l, From: f, To: t, Err: ErrCyclicEdge}
	}
	if _, ok := ix.edges[key]; ok {
		return nil, &EdgeError{Label: l, From: f, To: t, Err: ErrDuplicateEdge}
	}

	ix.seq++
	ix.edges[key] = ix.seq
	ix.byLabel[l] = append(ix.byLabel[l], key)
	ix.incoming[bucketKey{vertex: t}] = append(ix.incoming[bucketKey{vertex: t}], key)
	ix.incoming[bucketKey{vertex: t, label: l}] = append(ix.incoming[bucketKey{vertex: t, label: l}], key)
	ix.outgoing[bucketKey{vertex: f}] = append(ix.outgoing[bucketKey{vertex: f}], key)
	ix.outgoing[bucketKey{vertex: f, label: l}] = append(ix.outgoing[bucketKey{vertex: f, label: l}], key)

	ix.log.Debug("edge added", zap.String("label", l), zap.String("from", f), zap.String("to", t))
	return &Edge{index: ix, key: key}, nil
}

// RemoveEdge removes e from the index.
func (ix *Index) RemoveEdge(e *Edge) error {
	if e == nil {
		return invalidArgument("edge is nil")
	}
	if e.index != ix {
		return invalidArgument("edge belongs to another index")
	}
	if _, ok := ix.edges[e.key]; !ok {
		return &EdgeError{Label: e.key.label, From: e.key.from, To: e.key.to, Err: ErrEdgeNotFound}
	}
	ix.removeEdge(e.key)
	return nil
}

// RemoveEdgeByKey removes the edge from -[label]-> to.
func (ix *Index) RemoveEdgeByKey(label, from, to string) error {
	key, err := ix.edgeKey(label, from, to)
	if err != nil {
		return err
	}
	return ix.RemoveEdge(&Edge{index: ix, key: key})
}

// HasEdge reports whether the edge from -[label]-> to exists.
func (ix *Index) HasEdge(label, from, to string) (bool, error) {
	key, err := ix.edgeKey(label, from, to)
	if err != nil {
		return false, err
	}
	_, ok := ix.edges[key]
	return ok, nil
}

// Edges returns the edges carrying label, or every edge when label is empty.
// Edges are returned in insertion order.
func (ix *Index) Edges(label string) ([]*Edge, error) {
	if label == "" {
		keys := make([]edgeKey, 0, len(ix.edges))
		for key := range ix.edges {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool { return ix.edges[keys[i]] < ix.edges[keys[j]] })
		return ix.edgeHandles(keys), nil
	}
	l, err := ix.normalize(label, "edge label")
	if err != nil {
		return nil, err
	}
	return ix.edgeHandles(ix.byLabel[l]), nil
}

// EdgeIncoming returns the distinct vertices that are the target of an edge
// carrying label, in order of first occurrence.
func (ix *Index) EdgeIncoming(label string) ([]*Vertex, error) {
	return ix.edgeEndpoints(label, func(key edgeKey) string { return key.to })
}

// EdgeOutgoing returns the distinct vertices that are the source of an edge
// carrying label, in order of first occurrence.
func (ix *Index) EdgeOutgoing(label string) ([]*Vertex, error) {
	return ix.edgeEndpoints(label, func(key edgeKey) string { return key.from })
}

// VertexIncoming returns the edges ending at id, optionally restricted to
// label, paired with their source vertices. Unknown vertices have no edges.
func (ix *Index) VertexIncoming(id, label string) ([]Neighbor, error) {
	bucket, err := ix.bucket(id, label)
	if err != nil {
		return nil, err
	}
	keys := ix.incoming[bucket]
	out := make([]Neighbor, 0, len(keys))
	for _, key := range keys {
		out = append(out, Neighbor{
			Edge:   &Edge{index: ix, key: key},
			Vertex: &Vertex{index: ix, iri: key.from},
		})
	}
	return out, nil
}

// VertexOutgoing returns the edges starting at id, optionally restricted to
// label, paired with their target vertices. Unknown vertices have no edges.
func (ix *Index) VertexOutgoing(id, label string) ([]Neighbor, error) {
	bucket, err := ix.bucket(id, label)
	if err != nil {
		return nil, err
	}
	keys := ix.outgoing[bucket]
	out := make([]Neighbor, 0, len(keys))
	for _, key := range keys {
		out = append(out, Neighbor{
			Edge:   &Edge{index: ix, key: key},
			Vertex: &Vertex{index: ix, iri: key.to},
		})
	}
	return out, nil
}

// CompactIRI shortens iri using the registered prefixes.
func (ix *Index) CompactIRI(iri string) string { return ix.resolver.Compact(iri) }

// ExpandIRI resolves a compact identifier using the registered prefixes.
func (ix *Index) ExpandIRI(iri string) string { return ix.resolver.Expand(iri) }

// AddIRIPrefix registers prefix for the namespace iri. Prefixes must match
// [A-Za-z][A-Za-z0-9_]* and namespaces must be valid IRIs.
func (ix *Index) AddIRIPrefix(prefix, iri string) error {
	if prefix == "" {
		return invalidArgument("prefix is empty")
	}
	if !isPrefixName(prefix) {
		return &PrefixError{Prefix: prefix, IRI: iri, Reason: "prefix must match [A-Za-z][A-Za-z0-9_]*", Err: ErrInvalidPrefix}
	}
	if iri == "" {
		return invalidArgument("namespace IRI for prefix %q is empty", prefix)
	}
	if err := ValidateIRI(iri); err != nil {
		return err
	}
	if err := ix.resolver.AddPrefix(prefix, iri); err != nil {
		return err
	}
	ix.log.Debug("prefix added", zap.String("prefix", prefix), zap.String("iri", iri))
	return nil
}

// RemoveIRIPrefix removes a prefix mapping. Unknown prefixes are ignored.
func (ix *Index) RemoveIRIPrefix(prefix string) { ix.resolver.RemovePrefix(prefix) }

// HasPrefix reports whether prefix is registered.
func (ix *Index) HasPrefix(prefix string) bool { return ix.resolver.HasPrefix(prefix) }

// GetPrefix returns the namespace registered for prefix.
func (ix *Index) GetPrefix(prefix string) (string, bool) { return ix.resolver.Namespace(prefix) }

// Prefixes returns all prefix mappings in registration order.
func (ix *Index) Prefixes() []Prefix { return ix.resolver.Prefixes() }

// normalize expands a compact identifier and validates the result.
func (ix *Index) normalize(id, what string) (string, error) {
	if id == "" {
		return "", invalidArgument("%s is empty", what)
	}
	iri := ix.resolver.Expand(id)
	if err := ValidateIRI(iri); err != nil {
		return "", err
	}
	return iri, nil
}

func (ix *Index) edgeKey(label, from, to string) (edgeKey, error) {
	l, err := ix.normalize(label, "edge label")
	if err != nil {
		return edgeKey{}, err
	}
	f, err := ix.normalize(from, "edge source")
	if err != nil {
		return edgeKey{}, err
	}
	t, err := ix.normalize(to, "edge target")
	if err != nil {
		return edgeKey{}, err
	}
	return edgeKey{label: l, from: f, to: t}, nil
}

func (ix *Index) bucket(id, label string) (bucketKey, error) {
	iri, err := ix.normalize(id, "vertex id")
	if err != nil {
		return bucketKey{}, err
	}
	if label == "" {
		return bucketKey{vertex: iri}, nil
	}
	l, err := ix.normalize(label, "edge label")
	if err != nil {
		return bucketKey{}, err
	}
	return bucketKey{vertex: iri, label: l}, nil
}

func (ix *Index) edgeEndpoints(label string, endpoint func(edgeKey) string) ([]*Vertex, error) {
	l, err := ix.normalize(label, "edge label")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []*Vertex
	for _, key := range ix.byLabel[l] {
		id := endpoint(key)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, &Vertex{index: ix, iri: id})
	}
	return out, nil
}

func (ix *Index) edgeHandles(keys []edgeKey) []*Edge {
	out := make([]*Edge, len(keys))
	for i, key := range keys {
		out[i] = &Edge{index: ix, key: key}
	}
	return out
}

// removeEdge deletes the primary entry and patches the five derived buckets.
func (ix *Index) removeEdge(key edgeKey) {
	if _, ok := ix.edges[key]; !ok {
		return
	}
	delete(ix.edges, key)
	removeFromBucket(ix.byLabel, key.label, key)
	removeFromBucket(ix.incoming, bucketKey{vertex: key.to}, key)
	removeFromBucket(ix.incoming, bucketKey{vertex: key.to, label: key.label}, key)
	removeFromBucket(ix.outgoing, bucketKey{vertex: key.from}, key)
	removeFromBucket(ix.outgoing, bucketKey{vertex: key.from, label: key.label}, key)
	ix.log.Debug("edge removed", zap.String("label", key.label), zap.String("from", key.from), zap.String("to", key.to))
}

func removeFromBucket[K comparable](m map[K][]edgeKey, k K, key edgeKey) {
	keys := m[k]
	for i, candidate := range keys {
		if candidate == key {
			keys = append(keys[:i:i], keys[i+1:]...)
			break
		}
	}
	if len(keys) == 0 {
		delete(m, k)
		return
	}
	m[k] = keys
}
