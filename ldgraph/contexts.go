package ldgraph

import "strings"

// ContextEntry is one registered JSON-LD context.
type ContextEntry struct {
	IRI      string
	Document map[string]interface{}
}

// ContextRegistry maps context IRIs to context documents. IRIs are matched
// case-insensitively; each normalized IRI holds at most one document.
//
// The registry serves contexts to the JSON-LD processor's document loader,
// so documents registered here never trigger a network fetch.
type ContextRegistry struct {
	entries map[string]*ContextEntry // lower-cased IRI -> entry
	order   []string
}

// NewContextRegistry returns an empty registry.
func NewContextRegistry() *ContextRegistry {
	return &ContextRegistry{entries: make(map[string]*ContextEntry)}
}

// AddContext registers doc under iri. doc must be a JSON object, either a
// bare context definition or a document with an "@context" member.
func (r *ContextRegistry) AddContext(iri string, doc interface{}) error {
	if iri == "" {
		return invalidArgument("context IRI is empty")
	}
	if doc == nil {
		return invalidArgument("context document for %s is nil", iri)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return invalidArgument("context document for %s must be a JSON object, got %T", iri, doc)
	}
	if len(obj) == 0 {
		return invalidArgument("context document for %s is empty", iri)
	}
	key := strings.ToLower(iri)
	if existing, ok := r.entries[key]; ok {
		return &ContextError{IRI: existing.IRI, Err: ErrDuplicateContext}
	}
	r.entries[key] = &ContextEntry{IRI: iri, Document: obj}
	r.order = append(r.order, key)
	return nil
}

// RemoveContext unregisters iri. Unknown IRIs are ignored.
func (r *ContextRegistry) RemoveContext(iri string) {
	key := strings.ToLower(iri)
	if _, ok := r.entries[key]; !ok {
		return
	}
	delete(r.entries, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the context registered under iri, compared case-insensitively.
func (r *ContextRegistry) Lookup(iri string) (ContextEntry, bool) {
	if iri == "" {
		return ContextEntry{}, false
	}
	entry, ok := r.entries[strings.ToLower(iri)]
	if !ok {
		return ContextEntry{}, false
	}
	return *entry, true
}

// Contexts returns every registered context in registration order.
func (r *ContextRegistry) Contexts() []ContextEntry {
	out := make([]ContextEntry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.entries[key])
	}
	return out
}

// Len returns the number of registered contexts.
func (r *ContextRegistry) Len() int { return len(r.order) }

// IRIs returns the registered context IRIs in registration order.
func (r *ContextRegistry) IRIs() []string {
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key].IRI)
	}
	return out
}

// contextDocument returns doc in the shape expected of a loaded context:
// an object with an "@context" member.
func contextDocument(doc map[string]interface{}) map[string]interface{} {
	if _, ok := doc["@context"]; ok {
		return doc
	}
	return map[string]interface{}{"@context": doc}
}
