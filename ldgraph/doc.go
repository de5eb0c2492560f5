// Package ldgraph provides an in-memory, indexed JSON-LD graph.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// A Graph holds vertices (nodes identified by IRI) carrying attributes
// (literal values, optionally language-tagged) and directed, labelled edges
// between them. Every vertex and label is indexed, so both directions of an
// edge can be walked without scanning the graph:
//   - Vertices: AddVertex, GetVertex, RemoveVertex (cascades to edges).
//   - Edges: AddEdge, RemoveEdge, Edges, VertexIncoming, VertexOutgoing.
//   - Prefixes: SetPrefix registers a short form; ids and labels may be
//     passed compact ("ex:item") or expanded ("http://example.org/item").
//   - Contexts: AddContext registers JSON-LD contexts served to the processor
//     without network access.
//   - JSON-LD: Load expands a document into the graph; ToJSON and
//     VertexToJSON compact it back, optionally framed.
//
// JSON-LD processing is delegated to github.com/piprate/json-gold. Contexts
// referenced by IRI are resolved from the registry first; remote fetching is
// off unless WithRemoteContexts is given.
//
// Example:
//
//	g := ldgraph.New()
//	if err := g.SetPrefix("ex", "http://example.org/"); err != nil {
//	    // handle error
//	}
//	if err := g.Load(ctx, doc, ldgraph.LoadOptions{}); err != nil {
//	    // handle error
//	}
//	v, _ := g.GetVertex("ex:item")
//	names, _ := v.GetAttributeValues("ex:name")
//
// Handles (*Vertex, *Edge) are views onto the graph; they re-check the graph
// on every call and report ErrVertexNotFound once their target is removed.
// A Graph is not safe for concurrent use.
package ldgraph
