package ldgraph

import "strings"

// reservedPrefixes may not start a prefix, since they would shadow IRI schemes.
var reservedPrefixes = []string{"http", "https", "urn"}

// IRIResolver maps short prefixes to IRI namespaces and converts between
// compact ("ex:thing") and expanded ("http://example.org/thing") identifiers.
//
// The zero value is not usable; create resolvers with NewIRIResolver.
type IRIResolver struct {
	namespaces map[string]string // prefix -> namespace
	order      []string          // prefixes in registration order
}

// Prefix is one registered prefix mapping.
type Prefix struct {
	Prefix    string
	Namespace string
}

// NewIRIResolver returns a resolver with no prefixes registered.
func NewIRIResolver() *IRIResolver {
	return &IRIResolver{namespaces: make(map[string]string)}
}

// AddPrefix registers prefix as a short form of the namespace iri.
func (r *IRIResolver) AddPrefix(prefix, iri string) error {
	if prefix == "" {
		return invalidArgument("prefix is empty")
	}
	if iri == "" {
		return invalidArgument("namespace IRI for prefix %q is empty", prefix)
	}
	lower := strings.ToLower(prefix)
	for _, reserved := range reservedPrefixes {
		if strings.HasPrefix(lower, reserved) {
			return &PrefixError{Prefix: prefix, IRI: iri, Reason: "prefix starts with reserved token " + reserved, Err: ErrInvalidPrefix}
		}
	}
	if strings.HasPrefix(prefix, ":") || strings.HasSuffix(prefix, ":") {
		return &PrefixError{Prefix: prefix, IRI: iri, Reason: "prefix must not start or end with ':'", Err: ErrInvalidPrefix}
	}
	if _, ok := r.namespaces[prefix]; ok {
		return &PrefixError{Prefix: prefix, IRI: iri, Err: ErrDuplicatePrefix}
	}
	for _, p := range r.order {
		if strings.EqualFold(r.namespaces[p], iri) {
			return &PrefixError{Prefix: prefix, IRI: iri, Existing: p, Err: ErrDuplicatePrefixForIRI}
		}
	}
	r.namespaces[prefix] = iri
	r.order = append(r.order, prefix)
	return nil
}

// RemovePrefix deletes the mapping for prefix. Unknown prefixes are ignored.
func (r *IRIResolver) RemovePrefix(prefix string) {
	if _, ok := r.namespaces[prefix]; !ok {
		return
	}
	delete(r.namespaces, prefix)
	for i, p := range r.order {
		if p == prefix {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// HasPrefix reports whether prefix is registered.
func (r *IRIResolver) HasPrefix(prefix string) bool {
	_, ok := r.namespaces[prefix]
	return ok
}

// Namespace returns the namespace registered for prefix.
func (r *IRIResolver) Namespace(prefix string) (string, bool) {
	ns, ok := r.namespaces[prefix]
	return ns, ok
}

// Prefixes returns all mappings in registration order.
func (r *IRIResolver) Prefixes() []Prefix {
	out := make([]Prefix, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, Prefix{Prefix: p, Namespace: r.namespaces[p]})
	}
	return out
}

// Compact shortens iri using the longest registered namespace that it extends.
// IRIs that match no namespace are returned unchanged.
func (r *IRIResolver) Compact(iri string) string {
	if r.passthrough(iri) {
		return iri
	}
	bestPrefix, bestNS := "", ""
	for _, p := range r.order {
		ns := r.namespaces[p]
		if len(iri) <= len(ns) || !strings.HasPrefix(iri, ns) {
			continue
		}
		if len(ns) > len(bestNS) {
			bestPrefix, bestNS = p, ns
		}
	}
	if bestNS == "" {
		return iri
	}
	suffix := iri[len(bestNS):]
	if suffix[0] == '/' || suffix[0] == ':' {
		suffix = suffix[1:]
	}
	return bestPrefix + ":" + suffix
}

// Expand resolves a compact identifier against the registered prefixes.
// Identifiers without a registered prefix are assumed to be absolute and are
// returned unchanged.
func (r *IRIResolver) Expand(iri string) string {
	if r.passthrough(iri) {
		return iri
	}
	i := strings.IndexByte(iri, ':')
	if i < 0 {
		return iri
	}
	if ns, ok := r.namespaces[iri[:i]]; ok {
		return ns + iri[i+1:]
	}
	return iri
}

// Equal reports whether a and b name the same IRI once expanded.
func (r *IRIResolver) Equal(a, b string) bool {
	return strings.EqualFold(r.Expand(a), r.Expand(b))
}

func (r *IRIResolver) passthrough(iri string) bool {
	return len(r.namespaces) == 0 || iri == typeKeyword || isBlankNodeID(iri)
}

// isPrefixName reports whether value matches [A-Za-z][A-Za-z0-9_]*.
func isPrefixName(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if i == 0 {
			if !isPrefixStartChar(ch) {
				return false
			}
		} else if !isPrefixChar(ch) {
			return false
		}
	}
	return true
}

func isPrefixStartChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func isPrefixChar(ch byte) bool {
	return isPrefixStartChar(ch) || (ch >= '0' && ch <= '9') || ch == '_'
}
