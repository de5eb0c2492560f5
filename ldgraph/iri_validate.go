package ldgraph

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	blankNodePrefix = "_:"
	typeKeyword     = "@type"
)

// ValidateIRI checks that iri is an absolute IRI this graph can store.
// Returns an *IRIError (matching ErrInvalidIRI) if the IRI is rejected.
//
// Accepted IRIs:
//   - http and https IRIs that declare a host
//   - urn IRIs that declare a namespace identifier (urn:<nid>...)
//
// Blank node identifiers ("_:b0") and the @type keyword are always accepted.
func ValidateIRI(iri string) error {
	if iri == "" {
		return &IRIError{IRI: iri, Reason: "empty IRI"}
	}
	if isBlankNodeID(iri) || iri == typeKeyword {
		return nil
	}

	for i, r := range iri {
		if r < 0x20 {
			return &IRIError{IRI: iri, Reason: "control character at position " + strconv.Itoa(i)}
		}
		if r == '<' || r == '>' || r == '"' || r == ' ' {
			return &IRIError{IRI: iri, Reason: "character '" + string(r) + "' must be percent-encoded"}
		}
	}

	parsed, err := url.Parse(iri)
	if err != nil {
		return &IRIError{IRI: iri, Reason: "invalid IRI syntax: " + err.Error()}
	}
	if parsed.Scheme == "" {
		return &IRIError{IRI: iri, Reason: "IRI does not declare a scheme"}
	}

	switch scheme := strings.ToLower(parsed.Scheme); scheme {
	case "http", "https":
		if parsed.Host == "" {
			return &IRIError{IRI: iri, Scheme: scheme, Reason: "IRI does not declare a host"}
		}
	case "urn":
		nid := parsed.Opaque
		if i := strings.IndexByte(nid, ':'); i >= 0 {
			nid = nid[:i]
		}
		if nid == "" {
			return &IRIError{IRI: iri, Scheme: scheme, Reason: "URN does not declare a namespace identifier"}
		}
	default:
		return &IRIError{IRI: iri, Scheme: parsed.Scheme, Reason: "unsupported scheme"}
	}
	return nil
}

func isBlankNodeID(id string) bool {
	return len(id) > len(blankNodePrefix) && strings.HasPrefix(id, blankNodePrefix)
}
