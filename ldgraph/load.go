package ldgraph

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	ld "github.com/piprate/json-gold/ld"
	"go.uber.org/zap"
)

// BlankIRIResolver mints the id of a node loaded without an @id. It receives
// the expanded node object, so ids can be derived from the node's content and
// stay stable across loads.
type BlankIRIResolver func(node map[string]interface{}) (string, error)

// LoadOptions configures Graph.Load.
type LoadOptions struct {
	// Normalize flattens the document before loading: nodes sharing an @id
	// are merged and the processor assigns "_:bN" ids to blank nodes.
	Normalize bool
	// BlankIRIResolver mints ids for nodes without an @id. When nil, the
	// graph's blank id generator is used.
	BlankIRIResolver BlankIRIResolver
	// ExpandContext is applied to documents that rely on an external context.
	ExpandContext interface{}
	// Base resolves relative IRIs in the document.
	Base string
}

// Load expands a JSON-LD document and adds its nodes to the graph. Nodes
// whose @id already exists are merged into the existing vertex.
//
// Load is not atomic: if it fails part way, vertices and edges created
// before the failure remain in the graph.
func (g *Graph) Load(ctx context.Context, document interface{}, opts LoadOptions) error {
	if document == nil {
		return invalidArgument("document is nil")
	}
	loader := g.loader()
	jopts := JSONLDOptions{
		Base:           opts.Base,
		ExpandContext:  opts.ExpandContext,
		DocumentLoader: loader,
	}

	var result interface{}
	var err error
	if opts.Normalize {
		result, err = g.processor.Flatten(ctx, document, nil, jopts)
	} else {
		result, err = g.processor.Expand(ctx, document, jopts)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &DocumentParseError{Err: err, Cause: loader.failure}
	}
	nodes, err := expandedNodes(result)
	if err != nil {
		return &DocumentParseError{Err: err}
	}

	nl := &nodeLoader{graph: g, resolve: opts.BlankIRIResolver}
	for _, node := range nodes {
		if _, err := nl.load(node); err != nil {
			return err
		}
	}
	g.log.Debug("document loaded",
		zap.Int("nodes", len(nodes)),
		zap.Int("vertices", g.VertexCount()),
		zap.Int("edges", g.EdgeCount()))
	return nil
}

// LoadReader decodes a JSON-LD document from r and loads it.
func (g *Graph) LoadReader(ctx context.Context, r io.Reader, opts LoadOptions) error {
	doc, err := ld.DocumentFromReader(r)
	if err != nil {
		return &DocumentParseError{Err: err}
	}
	return g.Load(ctx, doc, opts)
}

type nodeLoader struct {
	graph   *Graph
	resolve BlankIRIResolver
}

// load adds one expanded node object, and the nodes embedded in it, to the
// graph. It returns the expanded id of the node's vertex.
func (l *nodeLoader) load(node map[string]interface{}) (string, error) {
	id, err := l.nodeID(node)
	if err != nil {
		return "", err
	}
	v, err := l.vertex(id)
	if err != nil {
		return "", err
	}

	if types, ok := node["@type"].([]interface{}); ok {
		for _, t := range types {
			typeID, ok := t.(string)
			if !ok {
				return "", fmt.Errorf("node %s: unexpected @type value %T", v.iri, t)
			}
			if err := v.SetType(typeID); err != nil {
				return "", err
			}
		}
	}

	for _, key := range sortedKeys(node) {
		switch key {
		case "@graph":
			children, err := expandedNodes(node[key])
			if err != nil {
				return "", &DocumentParseError{Err: fmt.Errorf("node %s: %w", v.iri, err)}
			}
			for _, child := range children {
				if _, err := l.load(child); err != nil {
					return "", err
				}
			}
			continue
		case "@reverse":
			if err := l.reverse(v, node[key]); err != nil {
				return "", err
			}
			continue
		}
		if strings.HasPrefix(key, "@") {
			continue
		}
		values, _ := node[key].([]interface{})
		for _, value := range values {
			if err := l.property(v, key, value); err != nil {
				return "", err
			}
		}
	}
	return v.iri, nil
}

func (l *nodeLoader) property(v *Vertex, key string, value interface{}) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("node %s: property %s: unexpected value %T", v.iri, key, value)
	}
	if _, ok := obj["@value"]; ok {
		val, err := valueFromExpanded(obj)
		if err != nil {
			return fmt.Errorf("node %s: property %s: %w", v.iri, key, err)
		}
		return v.AppendAttributeValue(key, val, "")
	}
	if list, ok := obj["@list"]; ok {
		items, _ := list.([]interface{})
		for _, item := range items {
			if err := l.property(v, key, item); err != nil {
				return err
			}
		}
		return nil
	}

	childID, err := l.load(obj)
	if err != nil {
		return err
	}
	if exists, err := v.HasOutgoing(key, childID); err != nil || exists {
		return err
	}
	_, err = v.SetOutgoing(key, childID, true)
	return err
}

// reverse loads an expanded @reverse map: each listed node gets an edge to v.
func (l *nodeLoader) reverse(v *Vertex, raw interface{}) error {
	props, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	for _, key := range sortedKeys(props) {
		items, _ := props[key].([]interface{})
		for _, item := range items {
			child, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			childID, err := l.load(child)
			if err != nil {
				return err
			}
			if exists, err := v.HasIncoming(key, childID); err != nil || exists {
				if err != nil {
					return err
				}
				continue
			}
			if _, err := v.SetIncoming(key, childID, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *nodeLoader) nodeID(node map[string]interface{}) (string, error) {
	if id, ok := node["@id"].(string); ok && id != "" {
		return id, nil
	}
	if l.resolve == nil {
		return l.graph.blankID(), nil
	}
	id, err := l.resolve(node)
	if err != nil {
		return "", fmt.Errorf("resolve blank node id: %w", err)
	}
	if id == "" {
		return "", invalidArgument("blank node resolver returned an empty id")
	}
	return id, nil
}

func (l *nodeLoader) vertex(id string) (*Vertex, error) {
	v, err := l.graph.GetVertex(id)
	if err != nil || v != nil {
		return v, err
	}
	return l.graph.AddVertex(id)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
