package jsonschema

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/valyala/fastjson"
)

// Document owns the nodes parsed from one schema value. Every nested
// subschema is indexed by its canonical pointer, and again relative to any
// $id scope it sits under, so a $ref can land on any node.
type Document struct {
	Base string
	Root *Node

	resources map[string]*resource
}

type resource struct {
	root      *Node
	byPointer map[string]*Node
	byAnchor  map[string]*Node
}

func newDocument(base string) *Document {
	return &Document{Base: base, resources: make(map[string]*resource)}
}

func (d *Document) resource(base string) *resource {
	res := d.resources[base]
	if res == nil {
		res = &resource{
			byPointer: make(map[string]*Node),
			byAnchor:  make(map[string]*Node),
		}
		d.resources[base] = res
	}
	return res
}

func (d *Document) put(base, ptr string, n *Node) {
	res := d.resource(base)
	if ptr == "" {
		res.root = n
	}
	res.byPointer[ptr] = n
}

func (d *Document) putAnchor(base, name string, n *Node) {
	d.resource(base).byAnchor[name] = n
}

// NodeAt returns the node registered under the given JSON Pointer from the
// document root, e.g. "/properties/id".
func (d *Document) NodeAt(ptr string) (*Node, bool) {
	res := d.resources[d.Base]
	if res == nil {
		return nil, false
	}
	n, ok := res.byPointer[ptr]
	return n, ok
}

// Validate checks an instance against the document root.
func (d *Document) Validate(instance *fastjson.Value, reg *Registry) []Violation {
	return Validate(d.Root, instance, reg)
}

// Registry resolves references across registered documents. Registration
// must finish before validation starts; after that the registry is
// read-only and safe for concurrent readers.
type Registry struct {
	resources map[string]*resource
}

func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*resource)}
}

// Register indexes a document, including every $id scope inside it.
// Registering two documents under the same identifier is an error.
func (r *Registry) Register(d *Document) error {
	for base := range d.resources {
		if _, ok := r.resources[base]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDocument, base)
		}
	}
	for base, res := range d.resources {
		r.resources[base] = res
	}
	return nil
}

// Resolve returns the node a reference names, interpreted against the
// given originating base. An empty fragment means the document root, a
// fragment starting with "/" is a JSON Pointer, anything else an anchor.
// Resolution is idempotent and side-effect-free.
func (r *Registry) Resolve(ref, base string) (*Node, error) {
	docID, frag, err := splitRef(base, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownDocument, ref, err)
	}
	res := r.resources[docID]
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, docID)
	}
	if frag == "" {
		if res.root == nil {
			return nil, fmt.Errorf("%w: %s has no root", ErrUnknownDocument, docID)
		}
		return res.root, nil
	}
	if strings.HasPrefix(frag, "/") {
		canon, err := canonicalPointer(frag)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnknownPointer, frag, err)
		}
		n := res.byPointer[canon]
		if n == nil {
			return nil, fmt.Errorf("%w: %s#%s", ErrUnknownPointer, docID, frag)
		}
		return n, nil
	}
	n := res.byAnchor[frag]
	if n == nil {
		return nil, fmt.Errorf("%w: anchor %q in %s", ErrUnknownPointer, frag, docID)
	}
	return n, nil
}

// splitRef combines a reference with its originating base and splits the
// result into document identifier and decoded fragment. Fragment-only
// references stay within the originating document, which also keeps
// opaque bases such as urn:uuid identifiers working.
func splitRef(base, ref string) (string, string, error) {
	if ref == "" {
		return base, "", nil
	}
	if strings.HasPrefix(ref, "#") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", "", err
		}
		return base, u.Fragment, nil
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return "", "", err
	}
	abs := ru
	if !ru.IsAbs() && base != "" {
		bu, err := url.Parse(base)
		if err != nil {
			return "", "", err
		}
		abs = bu.ResolveReference(ru)
	}
	frag := abs.Fragment
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String(), frag, nil
}

// canonicalPointer re-encodes a decoded pointer fragment into the escaped
// form nodes are registered under.
func canonicalPointer(frag string) (string, error) {
	p, err := jsonpointer.New(frag)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, tok := range p.DecodedTokens() {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(tok))
	}
	return b.String(), nil
}
