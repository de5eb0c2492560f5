package ldgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const schemaContextIRI = "http://example.org/contexts/schema.jsonld"

func schemaContext() map[string]interface{} {
	return map[string]interface{}{
		"@context": map[string]interface{}{
			"name":     "http://schema.org/name",
			"Person":   "http://schema.org/Person",
			"Agent":    "http://schema.org/Agent",
			"knows":    map[string]interface{}{"@id": "http://schema.org/knows", "@type": "@id"},
			"friend":   "http://schema.org/friend",
			"tags":     map[string]interface{}{"@id": "http://schema.org/tags", "@container": "@list"},
			"dispname": map[string]interface{}{"@id": "http://schema.org/dispname", "@container": "@language"},
			"data":     map[string]interface{}{"@id": "http://schema.org/data", "@type": "@json"},
			"age":      "http://schema.org/age",
		},
	}
}

func counterBlankIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("_:n%d", n)
	}
}

func newLoadGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g := New(append([]Option{WithBlankIDGenerator(counterBlankIDs())}, opts...)...)
	require.NoError(t, g.AddContext(schemaContextIRI, schemaContext()))
	require.NoError(t, g.SetPrefix("ex", "http://example.org/"))
	require.NoError(t, g.SetPrefix("schema", "http://schema.org/"))
	return g
}

func mustVertex(t *testing.T, g *Graph, id string) *Vertex {
	t.Helper()
	v, err := g.GetVertex(id)
	require.NoError(t, err)
	require.NotNil(t, v, "vertex %s", id)
	return v
}

func TestLoadNodeWithRegisteredContext(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/alice",
		"@type":    "Person",
		"name":     []interface{}{"Alice", "Ally"},
		"age":      42,
		"knows":    "http://example.org/bob",
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	alice := mustVertex(t, g, "ex:alice")
	values, err := alice.GetAttributeValues("schema:name")
	require.NoError(t, err)
	require.Equal(t, []string{`"Alice"`, `"Ally"`}, stringValues(t, values))

	age, ok, err := alice.GetAttributeValue("schema:age", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, float64(42), age.Value())

	ok, err = alice.IsType("schema:Person")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = alice.HasOutgoing("schema:knows", "ex:bob")
	require.NoError(t, err)
	require.True(t, ok)
	mustVertex(t, g, "ex:bob")
}

func TestLoadMergesIntoExistingVertex(t *testing.T) {
	g := newLoadGraph(t)
	alice, err := g.CreateVertex("ex:alice")
	require.NoError(t, err)
	require.NoError(t, alice.AppendAttributeValue("schema:age", 41, ""))

	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/alice",
		"@type":    []interface{}{"Person", "Agent"},
		"name":     "Alice",
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	attrs, err := alice.Attributes()
	require.NoError(t, err)
	require.Len(t, attrs, 2)

	types, err := alice.GetTypes()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"schema:Person", "schema:Agent"}, ids(types))
}

func TestLoadGraphDocument(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@graph": []interface{}{
			map[string]interface{}{"@id": "http://example.org/a", "knows": "http://example.org/b"},
			map[string]interface{}{"@id": "http://example.org/b", "name": "B"},
		},
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))
	require.Equal(t, 2, g.VertexCount())
	require.Equal(t, 1, g.EdgeCount())

	out, err := g.OutgoingVertices("schema:knows")
	require.NoError(t, err)
	require.Equal(t, []string{"ex:a"}, ids(out))
	in, err := g.IncomingVertices("schema:knows")
	require.NoError(t, err)
	require.Equal(t, []string{"ex:b"}, ids(in))
}

func TestLoadEmbeddedBlankNodes(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/alice",
		"friend":   map[string]interface{}{"name": "Carol"},
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	alice := mustVertex(t, g, "ex:alice")
	edges, err := alice.GetOutgoing("schema:friend")
	require.NoError(t, err)
	require.Len(t, edges, 1)

	carol := edges[0].To()
	require.NotNil(t, carol)
	require.True(t, carol.IsBlankNode())
	require.Equal(t, "_:n1", carol.IRI())
	name, ok, err := carol.GetAttributeValue("schema:name", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Carol", name.Value())
}

func TestLoadBlankIRIResolver(t *testing.T) {
	resolver := func(node map[string]interface{}) (string, error) {
		names, _ := node["http://schema.org/name"].([]interface{})
		if len(names) == 0 {
			return "", errors.New("nameless node")
		}
		name, _ := names[0].(map[string]interface{})["@value"].(string)
		return "urn:person:" + strings.ToLower(name), nil
	}
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/alice",
		"friend":   map[string]interface{}{"name": "Carol"},
	}

	g := newLoadGraph(t)
	opts := LoadOptions{BlankIRIResolver: resolver}
	require.NoError(t, g.Load(context.Background(), doc, opts))
	require.NoError(t, g.Load(context.Background(), doc, opts))

	carol := mustVertex(t, g, "urn:person:carol")
	in, err := carol.GetIncoming("")
	require.NoError(t, err)
	require.Len(t, in, 1, "the second load reuses the resolved vertex")
	require.Equal(t, 2, g.VertexCount())

	bad := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/dave",
		"friend":   map[string]interface{}{"age": 3},
	}
	err = g.Load(context.Background(), bad, opts)
	require.ErrorContains(t, err, "nameless node")
}

func TestLoadLanguageMapAndList(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/item",
		"dispname": map[string]interface{}{"en": "X", "fr": "Y"},
		"tags":     []interface{}{"b", "a"},
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	item := mustVertex(t, g, "ex:item")
	dispname, err := item.GetAttributeValues("schema:dispname")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{`"X"@en`, `"Y"@fr`}, stringValues(t, dispname))

	tags, err := item.GetAttributeValues("schema:tags")
	require.NoError(t, err)
	require.Equal(t, []string{`"b"`, `"a"`}, stringValues(t, tags))
}

func TestLoadJSONLiteral(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/item",
		"data":     map[string]interface{}{"b": 1, "a": []interface{}{true, "x"}},
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	item := mustVertex(t, g, "ex:item")
	data, ok, err := item.GetAttributeValue("schema:data", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ValueJSON, data.Kind())
	raw, _ := data.RawJSON()
	require.JSONEq(t, `{"a":[true,"x"],"b":1}`, string(raw))
}

func TestLoadNullJSONLiteral(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/item",
		"data":     nil,
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	item := mustVertex(t, g, "ex:item")
	data, ok, err := item.GetAttributeValue("schema:data", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ValueJSON, data.Kind())
	raw, _ := data.RawJSON()
	require.Equal(t, "null", string(raw))

	out, err := g.VertexToJSON(context.Background(), "ex:item", inlineSchemaContext(), SerializeOptions{StripContext: true})
	require.NoError(t, err)
	require.Equal(t, "http://example.org/item", out["@id"])
	require.Contains(t, out, "data")
	switch value := out["data"].(type) {
	case nil:
	case []interface{}:
		require.Equal(t, []interface{}{nil}, value)
	default:
		t.Fatalf("data = %#v, want null", value)
	}
}

func TestLoadNestedGraphRejectsNonNodes(t *testing.T) {
	g := newLoadGraph(t)
	nl := &nodeLoader{graph: g}
	_, err := nl.load(map[string]interface{}{
		"@id":    "urn:p:g",
		"@graph": []interface{}{map[string]interface{}{"@id": "urn:p:a"}, "urn:p:b"},
	})
	require.ErrorIs(t, err, ErrDocumentParse)
	require.Contains(t, err.Error(), "urn:p:g")

	_, err = nl.load(map[string]interface{}{
		"@id":    "urn:p:h",
		"@graph": []interface{}{map[string]interface{}{"@id": "urn:p:c"}},
	})
	require.NoError(t, err)
	ok, err := g.HasVertex("urn:p:c")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoadReverseProperty(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@id":      "http://example.org/bob",
		"@reverse": map[string]interface{}{
			"http://schema.org/knows": map[string]interface{}{"@id": "http://example.org/alice"},
		},
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))

	ok, err := g.HasEdge("schema:knows", "ex:alice", "ex:bob")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoadNormalize(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": schemaContextIRI,
		"@graph": []interface{}{
			map[string]interface{}{"@id": "http://example.org/a", "name": "first"},
			map[string]interface{}{"@id": "http://example.org/a", "age": 3},
			map[string]interface{}{"@id": "http://example.org/b", "friend": map[string]interface{}{"name": "anon"}},
		},
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{Normalize: true}))

	a := mustVertex(t, g, "ex:a")
	attrs, err := a.Attributes()
	require.NoError(t, err)
	require.Len(t, attrs, 2)

	b := mustVertex(t, g, "ex:b")
	edges, err := b.GetOutgoing("schema:friend")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.True(t, strings.HasPrefix(edges[0].ToID(), "_:b"), "flattening names blank nodes, got %s", edges[0].ToID())
}

func TestLoadUnregisteredContext(t *testing.T) {
	g := newLoadGraph(t)
	doc := map[string]interface{}{
		"@context": "http://example.org/contexts/unknown.jsonld",
		"@id":      "http://example.org/alice",
		"name":     "Alice",
	}
	err := g.Load(context.Background(), doc, LoadOptions{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrContextNotFound)
	require.ErrorIs(t, err, ErrDocumentParse)

	var parseErr *DocumentParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, ErrCodeContextNotFound, Code(err))
	require.Zero(t, g.VertexCount())
}

func TestLoadRemoteContext(t *testing.T) {
	remote := &stubLoader{docs: map[string]RemoteDocument{
		"http://remote.org/ctx": {
			DocumentURL: "http://remote.org/ctx",
			Document:    map[string]interface{}{"@context": map[string]interface{}{"title": "http://purl.org/dc/terms/title"}},
		},
	}}
	g := newLoadGraph(t, WithRemoteContexts(remote))
	doc := map[string]interface{}{
		"@context": "http://remote.org/ctx",
		"@id":      "http://example.org/book",
		"title":    "Go",
	}
	require.NoError(t, g.Load(context.Background(), doc, LoadOptions{}))
	require.Equal(t, []string{"http://remote.org/ctx"}, remote.calls)

	book := mustVertex(t, g, "ex:book")
	ok, err := book.HasAttribute("http://purl.org/dc/terms/title")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoadReader(t *testing.T) {
	g := newLoadGraph(t)
	input := `{
		"@context": {"name": "http://schema.org/name"},
		"@id": "http://example.org/reader",
		"name": "from reader"
	}`
	require.NoError(t, g.LoadReader(context.Background(), strings.NewReader(input), LoadOptions{}))
	mustVertex(t, g, "ex:reader")

	err := g.LoadReader(context.Background(), strings.NewReader("{not json"), LoadOptions{})
	require.ErrorIs(t, err, ErrDocumentParse)
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	g := newLoadGraph(t)
	require.ErrorIs(t, g.Load(context.Background(), nil, LoadOptions{}), ErrInvalidArgument)

	relative := map[string]interface{}{
		"@context": map[string]interface{}{"name": "http://schema.org/name"},
		"@id":      "relative-id",
		"name":     "x",
	}
	require.ErrorIs(t, g.Load(context.Background(), relative, LoadOptions{}), ErrInvalidIRI)
}
