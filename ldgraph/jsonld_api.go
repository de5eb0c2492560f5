package ldgraph

import (
	"context"
	"fmt"

	ld "github.com/piprate/json-gold/ld"
)

// JSONLDOptions configures JSON-LD processing.
type JSONLDOptions struct {
	// Base resolves relative IRIs.
	Base string
	// ProcessingMode controls JSON-LD version semantics: "json-ld-1.0" or "json-ld-1.1".
	ProcessingMode string
	// ExpandContext provides an external context for expansion.
	ExpandContext interface{}
	// PreserveArrays keeps single-element arrays when compacting.
	PreserveArrays bool
	// Explicit limits framed output to the properties named in the frame.
	Explicit bool

	// DocumentLoader resolves contexts referenced by IRI.
	DocumentLoader DocumentLoader
}

// DocumentLoader resolves remote contexts/documents.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, iri string) (RemoteDocument, error)
}

// RemoteDocument represents a fetched JSON-LD document.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// JSONLDProcessor exposes the JSON-LD algorithms the graph delegates to.
type JSONLDProcessor interface {
	Expand(ctx context.Context, input interface{}, opts JSONLDOptions) ([]interface{}, error)
	Compact(ctx context.Context, input interface{}, context interface{}, opts JSONLDOptions) (map[string]interface{}, error)
	Flatten(ctx context.Context, input interface{}, context interface{}, opts JSONLDOptions) (interface{}, error)
	Frame(ctx context.Context, input interface{}, frame interface{}, opts JSONLDOptions) (map[string]interface{}, error)
}

type defaultJSONLDProcessor struct{}

// NewJSONLDProcessor returns the default JSON-LD processor, backed by json-gold.
func NewJSONLDProcessor() JSONLDProcessor {
	return &defaultJSONLDProcessor{}
}

func (p *defaultJSONLDProcessor) Expand(ctx context.Context, input interface{}, opts JSONLDOptions) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	return proc.Expand(input, newJSONGoldOptions(ctx, opts))
}

func (p *defaultJSONLDProcessor) Compact(ctx context.Context, input interface{}, context interface{}, opts JSONLDOptions) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	return proc.Compact(input, context, newJSONGoldOptions(ctx, opts))
}

func (p *defaultJSONLDProcessor) Flatten(ctx context.Context, input interface{}, context interface{}, opts JSONLDOptions) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	return proc.Flatten(input, context, newJSONGoldOptions(ctx, opts))
}

func (p *defaultJSONLDProcessor) Frame(ctx context.Context, input interface{}, frame interface{}, opts JSONLDOptions) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	return proc.Frame(input, frame, newJSONGoldOptions(ctx, opts))
}

// jsonGoldDocumentLoader adapts a DocumentLoader to json-gold's loader
// interface, which has no context parameter.
type jsonGoldDocumentLoader struct {
	ctx   context.Context
	inner DocumentLoader
}

func (l jsonGoldDocumentLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	remote, err := l.inner.LoadDocument(l.ctx, iri)
	if err != nil {
		return nil, err
	}
	return &ld.RemoteDocument{
		DocumentURL: remote.DocumentURL,
		Document:    remote.Document,
		ContextURL:  remote.ContextURL,
	}, nil
}

// noRemoteLoader refuses every IRI, so json-gold never reaches the network
// unless a loader is configured.
type noRemoteLoader struct{}

func (noRemoteLoader) LoadDocument(_ context.Context, iri string) (RemoteDocument, error) {
	return RemoteDocument{}, &ContextError{IRI: iri, Err: ErrContextNotFound}
}

func newJSONGoldOptions(ctx context.Context, opts JSONLDOptions) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.Base)
	if opts.ProcessingMode != "" {
		goldOpts.ProcessingMode = opts.ProcessingMode
	}
	if opts.ExpandContext != nil {
		goldOpts.ExpandContext = opts.ExpandContext
	}
	goldOpts.CompactArrays = !opts.PreserveArrays
	goldOpts.Explicit = opts.Explicit
	loader := opts.DocumentLoader
	if loader == nil {
		loader = noRemoteLoader{}
	}
	goldOpts.DocumentLoader = jsonGoldDocumentLoader{ctx: ctx, inner: loader}
	return goldOpts
}

// expandedNodes normalizes processor output to a list of node objects.
func expandedNodes(result interface{}) ([]map[string]interface{}, error) {
	var items []interface{}
	switch value := result.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		items = value
	case map[string]interface{}:
		if graph, ok := value["@graph"].([]interface{}); ok {
			items = graph
		} else {
			items = []interface{}{value}
		}
	default:
		return nil, fmt.Errorf("jsonld: unexpected expansion result %T", result)
	}
	nodes := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		node, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("jsonld: unexpected node %T", item)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
