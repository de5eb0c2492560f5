package ldgraph

// Vertex is a handle to one node in an Index.
//
// Attribute names and edge labels passed to Vertex methods may be compact
// or expanded; identifiers returned to callers are compacted. Once the
// underlying vertex is removed, methods fail with ErrVertexNotFound.
type Vertex struct {
	index *Index
	iri   string
}

// Attribute is one named attribute and its values.
type Attribute struct {
	Name   string // Compacted attribute name
	Values []AttributeValue
}

// ID returns the compacted vertex id.
func (v *Vertex) ID() string { return v.index.resolver.Compact(v.iri) }

// IRI returns the expanded vertex id.
func (v *Vertex) IRI() string { return v.iri }

// IsBlankNode reports whether the vertex id is a blank node identifier.
func (v *Vertex) IsBlankNode() bool { return isBlankNodeID(v.iri) }

// Exists reports whether the vertex is still present in its index.
func (v *Vertex) Exists() bool {
	_, ok := v.index.vertices[v.iri]
	return ok
}

func (v *Vertex) String() string { return v.ID() }

func (v *Vertex) record() (*vertexRecord, error) {
	rec, ok := v.index.vertices[v.iri]
	if !ok {
		return nil, &VertexError{ID: v.iri, Err: ErrVertexNotFound}
	}
	return rec, nil
}

func (v *Vertex) attributeName(name string) (string, error) {
	key, err := v.index.normalize(name, "attribute name")
	if err != nil {
		return "", err
	}
	if key == typeKeyword {
		return "", invalidArgument("%s is an edge label, not an attribute", typeKeyword)
	}
	return key, nil
}

// attributeValue converts value and applies language, which may only tag strings.
func attributeValue(value interface{}, language string) (AttributeValue, error) {
	if s, ok := value.(string); ok && s == "" {
		return AttributeValue{}, invalidArgument("attribute value is empty")
	}
	val, err := ValueOf(value)
	if err != nil {
		return AttributeValue{}, err
	}
	if language == "" {
		return val, nil
	}
	return val.WithLanguage(language)
}

// AppendAttributeValue adds a value to the named attribute. A value with a
// language replaces the attribute's existing value for that language.
func (v *Vertex) AppendAttributeValue(name string, value interface{}, language string) error {
	rec, key, val, err := v.prepareAttribute(name, value, language)
	if err != nil {
		return err
	}
	rec.appendValue(key, val)
	return nil
}

// SetAttributeValue replaces the named attribute with value. With a
// language, only the value for that language is replaced.
func (v *Vertex) SetAttributeValue(name string, value interface{}, language string) error {
	rec, key, val, err := v.prepareAttribute(name, value, language)
	if err != nil {
		return err
	}
	if val.language != "" {
		rec.appendValue(key, val)
		return nil
	}
	if _, ok := rec.attrs[key]; !ok {
		rec.attrOrder = append(rec.attrOrder, key)
	}
	rec.attrs[key] = []AttributeValue{val}
	return nil
}

func (v *Vertex) prepareAttribute(name string, value interface{}, language string) (*vertexRecord, string, AttributeValue, error) {
	rec, err := v.record()
	if err != nil {
		return nil, "", AttributeValue{}, err
	}
	key, err := v.attributeName(name)
	if err != nil {
		return nil, "", AttributeValue{}, err
	}
	val, err := attributeValue(value, language)
	if err != nil {
		return nil, "", AttributeValue{}, err
	}
	return rec, key, val, nil
}

// GetAttributeValue returns the first value of the named attribute, limited
// to language when it is not empty.
func (v *Vertex) GetAttributeValue(name, language string) (AttributeValue, bool, error) {
	rec, err := v.record()
	if err != nil {
		return AttributeValue{}, false, err
	}
	key, err := v.attributeName(name)
	if err != nil {
		return AttributeValue{}, false, err
	}
	for _, val := range rec.attrs[key] {
		if language == "" || val.language == language {
			return val, true, nil
		}
	}
	return AttributeValue{}, false, nil
}

// GetAttributeValues returns every value of the named attribute in
// insertion order.
func (v *Vertex) GetAttributeValues(name string) ([]AttributeValue, error) {
	rec, err := v.record()
	if err != nil {
		return nil, err
	}
	key, err := v.attributeName(name)
	if err != nil {
		return nil, err
	}
	return append([]AttributeValue(nil), rec.attrs[key]...), nil
}

// HasAttribute reports whether the named attribute has any value.
func (v *Vertex) HasAttribute(name string) (bool, error) {
	rec, err := v.record()
	if err != nil {
		return false, err
	}
	key, err := v.attributeName(name)
	if err != nil {
		return false, err
	}
	return len(rec.attrs[key]) > 0, nil
}

// HasAttributeValue reports whether the named attribute holds value, in
// language when it is not empty.
func (v *Vertex) HasAttributeValue(name string, value interface{}, language string) (bool, error) {
	rec, key, val, err := v.prepareAttribute(name, value, language)
	if err != nil {
		return false, err
	}
	for _, existing := range rec.attrs[key] {
		if existing.sameValue(val) && (val.language == "" || existing.language == val.language) {
			return true, nil
		}
	}
	return false, nil
}

// Attributes returns every attribute in the order it was first set.
func (v *Vertex) Attributes() ([]Attribute, error) {
	rec, err := v.record()
	if err != nil {
		return nil, err
	}
	out := make([]Attribute, 0, len(rec.attrOrder))
	for _, key := range rec.attrOrder {
		out = append(out, Attribute{
			Name:   v.index.resolver.Compact(key),
			Values: append([]AttributeValue(nil), rec.attrs[key]...),
		})
	}
	return out, nil
}

// DeleteAttribute removes the named attribute and all of its values.
func (v *Vertex) DeleteAttribute(name string) error {
	rec, err := v.record()
	if err != nil {
		return err
	}
	key, err := v.attributeName(name)
	if err != nil {
		return err
	}
	rec.deleteAttribute(key)
	return nil
}

// DeleteAttributeValue removes every entry of the named attribute equal to
// value, limited to language when it is not empty.
func (v *Vertex) DeleteAttributeValue(name string, value interface{}, language string) error {
	rec, key, val, err := v.prepareAttribute(name, value, language)
	if err != nil {
		return err
	}
	values := rec.attrs[key]
	kept := values[:0:0]
	for _, existing := range values {
		if existing.sameValue(val) && (val.language == "" || existing.language == val.language) {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) == 0 {
		rec.deleteAttribute(key)
		return nil
	}
	rec.attrs[key] = kept
	return nil
}

// GetIncoming returns the edges ending at this vertex, optionally limited to label.
func (v *Vertex) GetIncoming(label string) ([]*Edge, error) {
	neighbors, err := v.incoming(label)
	if err != nil {
		return nil, err
	}
	return edgesOf(neighbors), nil
}

// GetOutgoing returns the edges starting at this vertex, optionally limited to label.
func (v *Vertex) GetOutgoing(label string) ([]*Edge, error) {
	neighbors, err := v.outgoing(label)
	if err != nil {
		return nil, err
	}
	return edgesOf(neighbors), nil
}

// HasIncoming reports whether an edge carrying label (any label when empty)
// ends at this vertex, coming from fromID when it is not empty.
func (v *Vertex) HasIncoming(label, fromID string) (bool, error) {
	neighbors, err := v.incoming(label)
	if err != nil {
		return false, err
	}
	return v.anyNeighbor(neighbors, fromID, func(key edgeKey) string { return key.from })
}

// HasOutgoing reports whether an edge carrying label (any label when empty)
// starts at this vertex, going to toID when it is not empty.
func (v *Vertex) HasOutgoing(label, toID string) (bool, error) {
	neighbors, err := v.outgoing(label)
	if err != nil {
		return false, err
	}
	return v.anyNeighbor(neighbors, toID, func(key edgeKey) string { return key.to })
}

func (v *Vertex) anyNeighbor(neighbors []Neighbor, id string, endpoint func(edgeKey) string) (bool, error) {
	if id == "" {
		return len(neighbors) > 0, nil
	}
	iri, err := v.index.normalize(id, "vertex id")
	if err != nil {
		return false, err
	}
	for _, n := range neighbors {
		if endpoint(n.Edge.key) == iri {
			return true, nil
		}
	}
	return false, nil
}

// SetIncoming creates the edge fromID -[label]-> this vertex. When autoCreate
// is set, a missing source vertex is created first.
func (v *Vertex) SetIncoming(label, fromID string, autoCreate bool) (*Edge, error) {
	l, from, err := v.prepareEdge(label, fromID, autoCreate)
	if err != nil {
		return nil, err
	}
	if _, ok := v.index.edges[edgeKey{label: l, from: from, to: v.iri}]; ok {
		return nil, &EdgeError{Label: l, From: from, To: v.iri, Err: ErrDuplicateEdge}
	}
	return v.index.AddEdge(l, from, v.iri)
}

// SetOutgoing creates the edge this vertex -[label]-> toID. When autoCreate
// is set, a missing target vertex is created first.
func (v *Vertex) SetOutgoing(label, toID string, autoCreate bool) (*Edge, error) {
	l, to, err := v.prepareEdge(label, toID, autoCreate)
	if err != nil {
		return nil, err
	}
	if _, ok := v.index.edges[edgeKey{label: l, from: v.iri, to: to}]; ok {
		return nil, &EdgeError{Label: l, From: v.iri, To: to, Err: ErrDuplicateEdge}
	}
	return v.index.AddEdge(l, v.iri, to)
}

// prepareEdge validates an edge request and resolves (or creates) the neighbor.
func (v *Vertex) prepareEdge(label, neighborID string, autoCreate bool) (string, string, error) {
	if _, err := v.record(); err != nil {
		return "", "", err
	}
	l, err := v.index.normalize(label, "edge label")
	if err != nil {
		return "", "", err
	}
	neighbor, err := v.index.normalize(neighborID, "vertex id")
	if err != nil {
		return "", "", err
	}
	if neighbor == v.iri {
		return "", "", &EdgeError{Label: l, From: v.iri, To: neighbor, Err: ErrCyclicEdge}
	}
	if _, ok := v.index.vertices[neighbor]; !ok {
		if !autoCreate {
			return "", "", &VertexError{ID: neighbor, Err: ErrVertexNotFound}
		}
		if _, err := v.index.AddVertex(neighbor); err != nil {
			return "", "", err
		}
	}
	return l, neighbor, nil
}

// SetType adds an @type edge to each type not already present. Missing
// type vertices are created.
func (v *Vertex) SetType(types ...string) error {
	for _, t := range types {
		ok, err := v.IsType(t)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := v.SetOutgoing(typeKeyword, t, true); err != nil {
			return err
		}
	}
	return nil
}

// GetTypes returns the type vertices of this vertex.
func (v *Vertex) GetTypes() ([]*Vertex, error) {
	neighbors, err := v.outgoing(typeKeyword)
	if err != nil {
		return nil, err
	}
	out := make([]*Vertex, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, n.Vertex)
	}
	return out, nil
}

// IsType reports whether this vertex has an @type edge to id.
func (v *Vertex) IsType(id string) (bool, error) {
	return v.HasOutgoing(typeKeyword, id)
}

// RemoveType removes the @type edges to each of ids. Types the vertex does
// not have are ignored.
func (v *Vertex) RemoveType(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := v.record(); err != nil {
		return err
	}
	for _, id := range ids {
		t, err := v.index.normalize(id, "type id")
		if err != nil {
			return err
		}
		v.index.removeEdge(edgeKey{label: typeKeyword, from: v.iri, to: t})
	}
	return nil
}

// RemoveIncoming removes the incoming edges carrying label (any label when
// empty) that match filter (every edge when nil). It returns the number of
// edges removed.
func (v *Vertex) RemoveIncoming(label string, filter EdgeFilter) (int, error) {
	neighbors, err := v.incoming(label)
	if err != nil {
		return 0, err
	}
	return v.removeMatching(neighbors, filter), nil
}

// RemoveOutgoing removes the outgoing edges carrying label (any label when
// empty) that match filter (every edge when nil). It returns the number of
// edges removed.
func (v *Vertex) RemoveOutgoing(label string, filter EdgeFilter) (int, error) {
	neighbors, err := v.outgoing(label)
	if err != nil {
		return 0, err
	}
	return v.removeMatching(neighbors, filter), nil
}

func (v *Vertex) removeMatching(neighbors []Neighbor, filter EdgeFilter) int {
	removed := 0
	for _, n := range neighbors {
		if filter != nil && !filter(n.Edge) {
			continue
		}
		v.index.removeEdge(n.Edge.key)
		removed++
	}
	return removed
}

func (v *Vertex) incoming(label string) ([]Neighbor, error) {
	if _, err := v.record(); err != nil {
		return nil, err
	}
	return v.index.VertexIncoming(v.iri, label)
}

func (v *Vertex) outgoing(label string) ([]Neighbor, error) {
	if _, err := v.record(); err != nil {
		return nil, err
	}
	return v.index.VertexOutgoing(v.iri, label)
}

func edgesOf(neighbors []Neighbor) []*Edge {
	out := make([]*Edge, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.Edge
	}
	return out
}

func (rec *vertexRecord) appendValue(key string, val AttributeValue) {
	values, ok := rec.attrs[key]
	if !ok {
		rec.attrOrder = append(rec.attrOrder, key)
	}
	if val.language != "" {
		for i, existing := range values {
			if existing.language == val.language {
				values[i] = val
				return
			}
		}
	}
	rec.attrs[key] = append(values, val)
}

func (rec *vertexRecord) deleteAttribute(key string) {
	if _, ok := rec.attrs[key]; !ok {
		return
	}
	delete(rec.attrs, key)
	for i, k := range rec.attrOrder {
		if k == key {
			rec.attrOrder = append(rec.attrOrder[:i], rec.attrOrder[i+1:]...)
			break
		}
	}
}
