package ldgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a missing or malformed argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeDuplicateVertex indicates a vertex id is already in use.
	ErrCodeDuplicateVertex ErrorCode = "DUPLICATE_VERTEX"
	// ErrCodeVertexNotFound indicates a referenced vertex does not exist.
	ErrCodeVertexNotFound ErrorCode = "VERTEX_NOT_FOUND"
	// ErrCodeDuplicateEdge indicates an edge with the same label and endpoints exists.
	ErrCodeDuplicateEdge ErrorCode = "DUPLICATE_EDGE"
	// ErrCodeEdgeNotFound indicates a referenced edge does not exist.
	ErrCodeEdgeNotFound ErrorCode = "EDGE_NOT_FOUND"
	// ErrCodeCyclicEdge indicates an edge whose endpoints are the same vertex.
	ErrCodeCyclicEdge ErrorCode = "CYCLIC_EDGE"
	// ErrCodeDuplicatePrefix indicates a prefix is already registered.
	ErrCodeDuplicatePrefix ErrorCode = "DUPLICATE_PREFIX"
	// ErrCodeDuplicatePrefixForIRI indicates a namespace is already bound to another prefix.
	ErrCodeDuplicatePrefixForIRI ErrorCode = "DUPLICATE_PREFIX_FOR_IRI"
	// ErrCodeInvalidIRI indicates an invalid IRI was encountered.
	ErrCodeInvalidIRI ErrorCode = "INVALID_IRI"
	// ErrCodeInvalidPrefix indicates a prefix with invalid syntax.
	ErrCodeInvalidPrefix ErrorCode = "INVALID_PREFIX"
	// ErrCodeContextNotFound indicates a context IRI could not be resolved.
	ErrCodeContextNotFound ErrorCode = "CONTEXT_NOT_FOUND"
	// ErrCodeContextNotSpecified indicates no context was given and none is registered.
	ErrCodeContextNotSpecified ErrorCode = "CONTEXT_NOT_SPECIFIED"
	// ErrCodeDuplicateContext indicates a context IRI is already registered.
	ErrCodeDuplicateContext ErrorCode = "DUPLICATE_CONTEXT"
	// ErrCodeDocumentParse indicates the JSON-LD processor rejected a document.
	ErrCodeDocumentParse ErrorCode = "DOCUMENT_PARSE_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeUnknown is returned for errors that do not originate in this package.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

var (
	// ErrInvalidArgument indicates a missing or malformed argument.
	ErrInvalidArgument = errors.New("ldgraph: invalid argument")
	// ErrDuplicateVertex indicates a vertex id is already in use.
	ErrDuplicateVertex = errors.New("ldgraph: duplicate vertex")
	// ErrVertexNotFound indicates a referenced vertex does not exist.
	ErrVertexNotFound = errors.New("ldgraph: vertex not found")
	// ErrDuplicateEdge indicates an edge with the same label and endpoints exists.
	ErrDuplicateEdge = errors.New("ldgraph: duplicate edge")
	// ErrEdgeNotFound indicates a referenced edge does not exist.
	ErrEdgeNotFound = errors.New("ldgraph: edge not found")
	// ErrCyclicEdge indicates an edge whose endpoints are the same vertex.
	ErrCyclicEdge = errors.New("ldgraph: cyclic edge")
	// ErrDuplicatePrefix indicates a prefix is already registered.
	ErrDuplicatePrefix = errors.New("ldgraph: duplicate prefix")
	// ErrDuplicatePrefixForIRI indicates a namespace is already bound to another prefix.
	ErrDuplicatePrefixForIRI = errors.New("ldgraph: namespace already has a prefix")
	// ErrInvalidIRI indicates an invalid IRI was encountered.
	ErrInvalidIRI = errors.New("ldgraph: invalid IRI")
	// ErrInvalidPrefix indicates a prefix with invalid syntax.
	ErrInvalidPrefix = errors.New("ldgraph: invalid prefix")
	// ErrContextNotFound indicates a context IRI could not be resolved.
	ErrContextNotFound = errors.New("ldgraph: context not found")
	// ErrContextNotSpecified indicates no context was given and none is registered.
	ErrContextNotSpecified = errors.New("ldgraph: context not specified")
	// ErrDuplicateContext indicates a context IRI is already registered.
	ErrDuplicateContext = errors.New("ldgraph: duplicate context")
	// ErrDocumentParse indicates the JSON-LD processor rejected a document.
	ErrDocumentParse = errors.New("ldgraph: document parse error")
)

// Code returns the error code for an error.
// Returns empty string for nil errors.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}

	// A parse failure reports the most specific code of its cause.
	var parseErr *DocumentParseError
	if errors.As(err, &parseErr) {
		if parseErr.Cause != nil {
			if code := Code(parseErr.Cause); code != ErrCodeUnknown {
				return code
			}
		}
		return ErrCodeDocumentParse
	}

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrDuplicateVertex):
		return ErrCodeDuplicateVertex
	case errors.Is(err, ErrVertexNotFound):
		return ErrCodeVertexNotFound
	case errors.Is(err, ErrDuplicateEdge):
		return ErrCodeDuplicateEdge
	case errors.Is(err, ErrEdgeNotFound):
		return ErrCodeEdgeNotFound
	case errors.Is(err, ErrCyclicEdge):
		return ErrCodeCyclicEdge
	case errors.Is(err, ErrDuplicatePrefix):
		return ErrCodeDuplicatePrefix
	case errors.Is(err, ErrDuplicatePrefixForIRI):
		return ErrCodeDuplicatePrefixForIRI
	case errors.Is(err, ErrInvalidIRI):
		return ErrCodeInvalidIRI
	case errors.Is(err, ErrInvalidPrefix):
		return ErrCodeInvalidPrefix
	case errors.Is(err, ErrContextNotFound):
		return ErrCodeContextNotFound
	case errors.Is(err, ErrContextNotSpecified):
		return ErrCodeContextNotSpecified
	case errors.Is(err, ErrDuplicateContext):
		return ErrCodeDuplicateContext
	case errors.Is(err, ErrDocumentParse):
		return ErrCodeDocumentParse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	}
	return ErrCodeUnknown
}

// invalidArgument reports a precondition failure naming the argument.
func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// VertexError reports a vertex-level conflict (duplicate or missing vertex).
type VertexError struct {
	ID  string // Expanded vertex id
	Err error  // ErrDuplicateVertex or ErrVertexNotFound
}

func (e *VertexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.ID)
}

func (e *VertexError) Unwrap() error { return e.Err }

// EdgeError reports an edge-level conflict (duplicate, missing or self-referencing edge).
type EdgeError struct {
	Label string // Expanded edge label
	From  string // Expanded source id
	To    string // Expanded target id
	Err   error  // ErrDuplicateEdge, ErrEdgeNotFound or ErrCyclicEdge
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("%s: %s -[%s]-> %s", e.Err.Error(), e.From, e.Label, e.To)
}

func (e *EdgeError) Unwrap() error { return e.Err }

// PrefixError reports a rejected prefix registration.
type PrefixError struct {
	Prefix string
	IRI    string
	// Existing is the prefix that already owns IRI, for ErrDuplicatePrefixForIRI.
	Existing string
	Reason   string
	Err      error
}

func (e *PrefixError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Err.Error())
	fmt.Fprintf(&msg, ": %q", e.Prefix)
	if e.IRI != "" {
		fmt.Fprintf(&msg, " -> %s", e.IRI)
	}
	if e.Existing != "" {
		fmt.Fprintf(&msg, " (bound to %q)", e.Existing)
	}
	if e.Reason != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Reason)
	}
	return msg.String()
}

func (e *PrefixError) Unwrap() error { return e.Err }

// IRIError reports a malformed or unsupported IRI.
type IRIError struct {
	IRI    string
	Scheme string // Offending scheme, if any
	Reason string
}

func (e *IRIError) Error() string {
	if e.Scheme != "" {
		return fmt.Sprintf("%s %q: %s (scheme %q)", ErrInvalidIRI.Error(), e.IRI, e.Reason, e.Scheme)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidIRI.Error(), e.IRI, e.Reason)
}

func (e *IRIError) Unwrap() error { return ErrInvalidIRI }

// ContextError reports a context registry or resolution failure.
type ContextError struct {
	IRI string
	Err error // ErrContextNotFound, ErrContextNotSpecified or ErrDuplicateContext
	// Cause is set when a remote loader failed.
	Cause error
}

func (e *ContextError) Error() string {
	msg := e.Err.Error()
	if e.IRI != "" {
		msg += ": " + e.IRI
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ContextError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// DocumentParseError wraps a JSON-LD processor failure.
type DocumentParseError struct {
	Err error // Error returned by the processor
	// Cause is the document loader failure behind Err, when there was one.
	Cause error
}

func (e *DocumentParseError) Error() string {
	if e.Cause != nil && e.Cause != e.Err {
		return fmt.Sprintf("%s: %v: %v", ErrDocumentParse.Error(), e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", ErrDocumentParse.Error(), e.Err)
}

func (e *DocumentParseError) Unwrap() []error {
	errs := []error{ErrDocumentParse}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.Err != nil && e.Err != e.Cause {
		errs = append(errs, e.Err)
	}
	return errs
}
