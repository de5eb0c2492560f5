package ldgraph

import (
	"context"

	"go.uber.org/zap"
)

// SerializeOptions configures ToJSON and VertexToJSON.
type SerializeOptions struct {
	// StripContext removes the @context member from the result.
	StripContext bool
	// BlankReferences omits the @id of embedded blank nodes that are
	// reachable through a single edge. The projected root keeps its @id.
	BlankReferences bool
	// Frame shapes the output with JSON-LD framing instead of plain
	// compaction. A frame without @context uses the resolved context.
	Frame map[string]interface{}
	// Explicit limits framed output to the properties named in Frame.
	Explicit bool
}

// ToJSON projects the whole graph as a JSON-LD document with an @graph
// member, compacted against contextOrIRI.
//
// contextOrIRI is an inline context object, an array context, or the IRI of
// a registered context. When it is nil or empty the registered contexts are
// used; if none are registered ToJSON fails with ErrContextNotSpecified.
func (g *Graph) ToJSON(ctx context.Context, contextOrIRI interface{}, opts SerializeOptions) (map[string]interface{}, error) {
	b := newNodeBuilder(g.Index, opts.BlankReferences)
	var nodes []interface{}
	for _, rec := range g.graphOrder() {
		nodes = append(nodes, b.node(rec, false, false))
	}
	if nodes == nil {
		nodes = []interface{}{}
	}
	out, err := g.project(ctx, nodes, contextOrIRI, opts)
	if err != nil {
		return nil, err
	}
	if opts.Frame == nil {
		out = ensureGraph(out)
	}
	g.log.Debug("graph serialized", zap.Int("nodes", len(nodes)))
	return out, nil
}

// VertexToJSON projects the vertex id, with every vertex reachable through
// its outgoing edges embedded, as a JSON-LD node object.
func (g *Graph) VertexToJSON(ctx context.Context, id string, contextOrIRI interface{}, opts SerializeOptions) (map[string]interface{}, error) {
	v, err := g.GetVertex(id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &VertexError{ID: g.ExpandIRI(id), Err: ErrVertexNotFound}
	}
	b := newNodeBuilder(g.Index, opts.BlankReferences)
	b.emitted[v.iri] = true
	root := b.node(g.vertices[v.iri], false, true)
	return g.project(ctx, []interface{}{root}, contextOrIRI, opts)
}

// project compacts (or frames) expanded nodes against the resolved context.
func (g *Graph) project(ctx context.Context, expanded []interface{}, contextOrIRI interface{}, opts SerializeOptions) (map[string]interface{}, error) {
	resolved, err := g.resolveContext(contextOrIRI)
	if err != nil {
		return nil, err
	}
	loader := g.loader()
	jopts := JSONLDOptions{DocumentLoader: loader}

	var out map[string]interface{}
	if opts.Frame != nil {
		frame := make(map[string]interface{}, len(opts.Frame)+1)
		for k, v := range opts.Frame {
			frame[k] = v
		}
		if _, ok := frame["@context"]; !ok {
			frame["@context"] = resolved
		}
		jopts.Explicit = opts.Explicit
		out, err = g.processor.Frame(ctx, expanded, frame, jopts)
	} else {
		out, err = g.processor.Compact(ctx, expanded, resolved, jopts)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &DocumentParseError{Err: err, Cause: loader.failure}
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	if opts.StripContext {
		delete(out, "@context")
	}
	return out, nil
}

// resolveContext turns a caller-supplied context into one the processor accepts.
func (g *Graph) resolveContext(contextOrIRI interface{}) (interface{}, error) {
	switch value := contextOrIRI.(type) {
	case nil:
	case string:
		if value == "" {
			break
		}
		if entry, ok := g.contexts.Lookup(value); ok {
			return entry.IRI, nil
		}
		if g.remote != nil {
			return value, nil
		}
		return nil, &ContextError{IRI: value, Err: ErrContextNotFound}
	case map[string]interface{}:
		if len(value) == 0 {
			return nil, invalidArgument("context object is empty")
		}
		if inner, ok := value["@context"]; ok {
			return inner, nil
		}
		return value, nil
	case []interface{}:
		if len(value) == 0 {
			return nil, invalidArgument("context array is empty")
		}
		return value, nil
	default:
		return nil, invalidArgument("unsupported context type %T", contextOrIRI)
	}

	iris := g.contexts.IRIs()
	switch len(iris) {
	case 0:
		return nil, &ContextError{Err: ErrContextNotSpecified}
	case 1:
		return iris[0], nil
	}
	all := make([]interface{}, len(iris))
	for i, iri := range iris {
		all[i] = iri
	}
	return all, nil
}

// graphOrder lists the vertices of a graph projection: typed vertices grouped
// by type, then untyped ones. Vertices that only serve as types are skipped.
func (g *Graph) graphOrder() []*vertexRecord {
	seen := make(map[string]bool)
	var out []*vertexRecord
	add := func(iri string) {
		if seen[iri] {
			return
		}
		seen[iri] = true
		out = append(out, g.vertices[iri])
	}
	typeVertices, _ := g.EdgeIncoming(typeKeyword)
	for _, tv := range typeVertices {
		for _, key := range g.incoming[bucketKey{vertex: tv.iri, label: typeKeyword}] {
			add(key.from)
		}
	}
	for _, v := range g.Vertices() {
		if seen[v.iri] {
			continue
		}
		rec := g.vertices[v.iri]
		if len(rec.attrOrder) == 0 && len(g.outgoing[bucketKey{vertex: v.iri}]) == 0 &&
			len(g.incoming[bucketKey{vertex: v.iri, label: typeKeyword}]) > 0 {
			continue
		}
		add(v.iri)
	}
	return out
}

// ensureGraph gives a compacted graph projection an @graph member even when
// compaction collapsed it to a single node.
func ensureGraph(out map[string]interface{}) map[string]interface{} {
	if _, ok := out["@graph"]; ok {
		return out
	}
	wrapped := map[string]interface{}{}
	if c, ok := out["@context"]; ok {
		wrapped["@context"] = c
		delete(out, "@context")
	}
	graph := []interface{}{}
	if len(out) > 0 {
		graph = append(graph, out)
	}
	wrapped["@graph"] = graph
	return wrapped
}

// nodeBuilder builds expanded JSON-LD node objects from index records.
type nodeBuilder struct {
	index     *Index
	blankRefs bool
	emitted   map[string]bool
}

func newNodeBuilder(ix *Index, blankRefs bool) *nodeBuilder {
	return &nodeBuilder{index: ix, blankRefs: blankRefs, emitted: make(map[string]bool)}
}

// node builds the expanded node object for rec. With embed, edge targets are
// embedded depth-first; targets already emitted become references.
func (b *nodeBuilder) node(rec *vertexRecord, embedded, embed bool) map[string]interface{} {
	obj := make(map[string]interface{})
	if !(embedded && b.omitID(rec.id)) {
		obj["@id"] = rec.id
	}

	var types []interface{}
	for _, key := range b.index.outgoing[bucketKey{vertex: rec.id, label: typeKeyword}] {
		types = append(types, key.to)
	}
	if len(types) > 0 {
		obj["@type"] = types
	}

	for _, name := range rec.attrOrder {
		values := rec.attrs[name]
		items := make([]interface{}, 0, len(values))
		for _, val := range values {
			items = append(items, val.expanded())
		}
		obj[name] = items
	}

	for _, key := range b.index.outgoing[bucketKey{vertex: rec.id}] {
		if key.label == typeKeyword {
			continue
		}
		var target map[string]interface{}
		if embed && !b.emitted[key.to] {
			b.emitted[key.to] = true
			target = b.node(b.index.vertices[key.to], true, true)
		} else {
			target = map[string]interface{}{"@id": key.to}
		}
		items, _ := obj[key.label].([]interface{})
		obj[key.label] = append(items, target)
	}
	return obj
}

// omitID reports whether an embedded node may drop its @id: it must be a
// blank node that no other edge refers to.
func (b *nodeBuilder) omitID(id string) bool {
	return b.blankRefs && isBlankNodeID(id) && len(b.index.incoming[bucketKey{vertex: id}]) <= 1
}
