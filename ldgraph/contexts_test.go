package ldgraph

import (
	"errors"
	"testing"
)

func TestContextRegistryAddContext(t *testing.T) {
	tests := []struct {
		name    string
		iri     string
		doc     interface{}
		wantErr error
	}{
		{
			name: "bare context",
			iri:  "http://example.org/other",
			doc:  map[string]interface{}{"name": "http://schema.org/name"},
		},
		{
			name: "wrapped context",
			iri:  "http://example.org/wrapped",
			doc: map[string]interface{}{
				"@context": map[string]interface{}{"name": "http://schema.org/name"},
			},
		},
		{name: "empty iri", iri: "", doc: map[string]interface{}{"a": "b"}, wantErr: ErrInvalidArgument},
		{name: "nil document", iri: "http://example.org/x", doc: nil, wantErr: ErrInvalidArgument},
		{name: "array document", iri: "http://example.org/x", doc: []interface{}{"a"}, wantErr: ErrInvalidArgument},
		{name: "empty document", iri: "http://example.org/x", doc: map[string]interface{}{}, wantErr: ErrInvalidArgument},
		{
			name:    "duplicate ignoring case",
			iri:     "HTTP://EXAMPLE.ORG/CONTEXT",
			doc:     map[string]interface{}{"a": "http://a.org/"},
			wantErr: ErrDuplicateContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewContextRegistry()
			if err := r.AddContext("http://example.org/context", map[string]interface{}{"x": "http://x.org/"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			err := r.AddContext(tt.iri, tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("AddContext(%q) unexpected error: %v", tt.iri, err)
				}
				if r.Len() != 2 {
					t.Fatalf("Len() = %d, want 2", r.Len())
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddContext(%q) error = %v, want %v", tt.iri, err, tt.wantErr)
			}
			if r.Len() != 1 {
				t.Fatalf("rejected context was registered")
			}
		})
	}
}

func TestContextRegistryLookup(t *testing.T) {
	r := NewContextRegistry()
	doc := map[string]interface{}{"name": "http://schema.org/name"}
	if err := r.AddContext("http://example.org/Context", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := r.Lookup("http://EXAMPLE.org/context")
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
	if entry.IRI != "http://example.org/Context" {
		t.Fatalf("IRI = %q, want the registered spelling", entry.IRI)
	}
	if _, ok := r.Lookup(""); ok {
		t.Fatal("empty IRI matched")
	}

	r.RemoveContext("http://example.org/CONTEXT")
	if _, ok := r.Lookup("http://example.org/Context"); ok {
		t.Fatal("context still registered after removal")
	}
	r.RemoveContext("http://example.org/unknown")
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
}

func TestContextRegistryOrder(t *testing.T) {
	r := NewContextRegistry()
	for _, iri := range []string{"http://b.org/ctx", "http://a.org/ctx", "http://c.org/ctx"} {
		if err := r.AddContext(iri, map[string]interface{}{"k": "http://k.org/"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	r.RemoveContext("http://a.org/ctx")

	got := r.IRIs()
	want := []string{"http://b.org/ctx", "http://c.org/ctx"}
	if len(got) != len(want) {
		t.Fatalf("IRIs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IRIs() = %v, want %v", got, want)
		}
	}
	if entries := r.Contexts(); entries[1].IRI != "http://c.org/ctx" {
		t.Fatalf("Contexts() out of order: %v", entries)
	}
}

func TestContextDocument(t *testing.T) {
	bare := map[string]interface{}{"name": "http://schema.org/name"}
	wrapped := contextDocument(bare)
	if _, ok := wrapped["@context"]; !ok {
		t.Fatalf("bare context was not wrapped: %v", wrapped)
	}

	already := map[string]interface{}{"@context": bare}
	if got := contextDocument(already); len(got) != 1 || got["@context"] == nil {
		t.Fatalf("wrapped context changed: %v", got)
	}
}
