package ldgraph

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	ld "github.com/piprate/json-gold/ld"
	"github.com/pquerna/cachecontrol"
	"go.uber.org/zap"
)

const contextAcceptHeader = "application/ld+json, application/json;q=0.9"

// registryLoader serves contexts from a ContextRegistry and falls back to an
// optional remote loader. It remembers the first failure so callers can
// report it as the cause of a processor error, which json-gold does not wrap.
type registryLoader struct {
	registry *ContextRegistry
	remote   DocumentLoader
	log      *zap.Logger
	failure  error
}

func newRegistryLoader(registry *ContextRegistry, remote DocumentLoader, logger *zap.Logger) *registryLoader {
	return &registryLoader{registry: registry, remote: remote, log: logger}
}

func (l *registryLoader) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	if entry, ok := l.registry.Lookup(iri); ok {
		return RemoteDocument{DocumentURL: entry.IRI, Document: contextDocument(entry.Document)}, nil
	}
	if l.remote == nil {
		return RemoteDocument{}, l.fail(&ContextError{IRI: iri, Err: ErrContextNotFound})
	}
	l.log.Debug("loading remote context", zap.String("iri", iri))
	doc, err := l.remote.LoadDocument(ctx, iri)
	if err != nil {
		return RemoteDocument{}, l.fail(&ContextError{IRI: iri, Err: ErrContextNotFound, Cause: err})
	}
	return doc, nil
}

func (l *registryLoader) fail(err error) error {
	if l.failure == nil {
		l.failure = err
	}
	l.log.Debug("context not resolved", zap.Error(err))
	return err
}

// HTTPContextLoader fetches JSON-LD contexts over HTTP. Responses are cached
// in memory for as long as their caching headers allow.
//
// HTTPContextLoader is safe for concurrent use.
type HTTPContextLoader struct {
	client *http.Client
	log    *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cachedDocument
}

type cachedDocument struct {
	doc     RemoteDocument
	expires time.Time
}

// NewHTTPContextLoader returns a loader using client (http.DefaultClient
// when nil). A nil logger disables logging.
func NewHTTPContextLoader(client *http.Client, logger *zap.Logger) *HTTPContextLoader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPContextLoader{
		client: client,
		log:    logger.Named("contexts"),
		now:    time.Now,
		cache:  make(map[string]cachedDocument),
	}
}

// LoadDocument fetches and parses the document at iri.
func (l *HTTPContextLoader) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	if doc, ok := l.cached(iri); ok {
		return doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("context %s: %w", iri, err)
	}
	req.Header.Set("Accept", contextAcceptHeader)
	resp, err := l.client.Do(req)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("context %s: %w", iri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return RemoteDocument{}, fmt.Errorf("context %s: unexpected status %s", iri, resp.Status)
	}

	doc, err := ld.DocumentFromReader(resp.Body)
	if err != nil {
		return RemoteDocument{}, fmt.Errorf("context %s: %w", iri, err)
	}
	remote := RemoteDocument{DocumentURL: resp.Request.URL.String(), Document: doc}

	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{})
	switch {
	case err != nil:
		l.log.Warn("invalid caching headers", zap.String("iri", iri), zap.Error(err))
	case len(reasons) == 0 && expires.After(l.now()):
		l.mu.Lock()
		l.cache[iri] = cachedDocument{doc: remote, expires: expires}
		l.mu.Unlock()
		l.log.Debug("context cached", zap.String("iri", iri), zap.Time("expires", expires))
	}
	return remote, nil
}

func (l *HTTPContextLoader) cached(iri string) (RemoteDocument, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.cache[iri]
	if !ok {
		return RemoteDocument{}, false
	}
	if !entry.expires.After(l.now()) {
		delete(l.cache, iri)
		return RemoteDocument{}, false
	}
	return entry.doc, true
}
