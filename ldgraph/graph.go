package ldgraph

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Graph is an indexed JSON-LD graph: an Index of vertices and edges plus the
// context registry and JSON-LD processor used to load and project documents.
//
// Each Graph owns its prefixes and contexts; graphs never share them.
// Graph is not safe for concurrent use.
type Graph struct {
	*Index

	contexts  *ContextRegistry
	processor JSONLDProcessor
	remote    DocumentLoader
	blankID   func() string
	log       *zap.Logger
}

// Option configures a Graph.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	processor  JSONLDProcessor
	remote     DocumentLoader
	remoteHTTP bool
	blankID    func() string
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProcessor replaces the json-gold backed JSON-LD processor.
func WithProcessor(p JSONLDProcessor) Option {
	return func(o *options) { o.processor = p }
}

// WithRemoteContexts enables loading contexts that are not registered with
// the graph. A nil loader selects an HTTPContextLoader on http.DefaultClient.
// Without this option unregistered contexts fail with ErrContextNotFound.
func WithRemoteContexts(loader DocumentLoader) Option {
	return func(o *options) {
		o.remote = loader
		o.remoteHTTP = loader == nil
	}
}

// WithBlankIDGenerator sets the function that mints ids for nodes loaded
// without an @id. Generated ids must start with "_:".
func WithBlankIDGenerator(fn func() string) Option {
	return func(o *options) { o.blankID = fn }
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.processor == nil {
		o.processor = NewJSONLDProcessor()
	}
	if o.remoteHTTP {
		o.remote = NewHTTPContextLoader(nil, o.logger)
	}
	if o.blankID == nil {
		o.blankID = newBlankID
	}
	return &Graph{
		Index:     NewIndex(o.logger),
		contexts:  NewContextRegistry(),
		processor: o.processor,
		remote:    o.remote,
		blankID:   o.blankID,
		log:       o.logger,
	}
}

func newBlankID() string {
	return blankNodePrefix + uuid.NewString()
}

// CreateVertex creates a vertex with the given compact or expanded id.
func (g *Graph) CreateVertex(id string) (*Vertex, error) {
	return g.AddVertex(id)
}

// CreateEdge creates the edge from -[label]-> to. With autoCreate, missing
// endpoint vertices are created first.
func (g *Graph) CreateEdge(label, from, to string, autoCreate bool) (*Edge, error) {
	if !autoCreate {
		return g.AddEdge(label, from, to)
	}
	key, err := g.edgeKey(label, from, to)
	if err != nil {
		return nil, err
	}
	if key.from == key.to {
		return nil, &EdgeError{Label: key.label, From: key.from, To: key.to, Err: ErrCyclicEdge}
	}
	for _, id := range []string{key.from, key.to} {
		if _, ok := g.vertices[id]; ok {
			continue
		}
		if _, err := g.AddVertex(id); err != nil {
			return nil, err
		}
	}
	return g.AddEdge(key.label, key.from, key.to)
}

// IncomingVertices returns the distinct targets of edges carrying label.
func (g *Graph) IncomingVertices(label string) ([]*Vertex, error) {
	return g.EdgeIncoming(label)
}

// OutgoingVertices returns the distinct sources of edges carrying label.
func (g *Graph) OutgoingVertices(label string) ([]*Vertex, error) {
	return g.EdgeOutgoing(label)
}

// SetPrefix registers prefix as a short form of the namespace iri.
func (g *Graph) SetPrefix(prefix, iri string) error {
	return g.AddIRIPrefix(prefix, iri)
}

// RemovePrefix removes a prefix mapping. Unknown prefixes are ignored.
func (g *Graph) RemovePrefix(prefix string) {
	g.RemoveIRIPrefix(prefix)
}

// AddContext registers a JSON-LD context document under iri.
func (g *Graph) AddContext(iri string, doc interface{}) error {
	if err := g.contexts.AddContext(iri, doc); err != nil {
		return err
	}
	g.log.Debug("context registered", zap.String("iri", iri))
	return nil
}

// RemoveContext unregisters a context. Unknown IRIs are ignored.
func (g *Graph) RemoveContext(iri string) {
	g.contexts.RemoveContext(iri)
}

// Contexts returns the registered contexts in registration order.
func (g *Graph) Contexts() []ContextEntry {
	return g.contexts.Contexts()
}

// loader returns a fresh registry-backed loader for one processor call.
func (g *Graph) loader() *registryLoader {
	return newRegistryLoader(g.contexts, g.remote, g.log)
}
