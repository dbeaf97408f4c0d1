package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Document is a parsed schema file.
type Document struct {
	Path string
	root map[string]any
}

// New returns an empty document.
func New(path string) *Document {
	return &Document{Path: path, root: map[string]any{}}
}

// Parse decodes schema file content. Numbers are kept as json.Number so
// unrelated values are written back exactly as read.
func Parse(path string, data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(path), nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Path: path, Msg: "unexpected content after top-level object"}
	}

	root, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Path: path, Msg: "top-level value must be an object"}
	}

	if err := validateLayout(root); err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}
	return &Document{Path: path, root: root}, nil
}

// Entries returns every entry in the document sorted by path.
func (d *Document) Entries() []Entry {
	var entries []Entry
	walk(d.root, "", func(e Entry) {
		entries = append(entries, e)
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// Lookup returns the entry at path.
func (d *Document) Lookup(path string) (Entry, bool) {
	node := d.root
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		child, ok := node[seg].(map[string]any)
		if !ok {
			return Entry{}, false
		}
		if i == len(segs)-1 {
			if !isEntry(child) {
				return Entry{}, false
			}
			e, err := toEntry(path, child)
			return e, err == nil
		}
		if isEntry(child) {
			return Entry{}, false
		}
		node = child
	}
	return Entry{}, false
}

// FindByEnv returns the entry declaring the environment variable env.
func (d *Document) FindByEnv(env string) (Entry, bool) {
	for _, e := range d.Entries() {
		if e.Env == env {
			return e, true
		}
	}
	return Entry{}, false
}

// Insert adds e at e.Path, creating namespaces as needed. The document is
// not modified when an error is returned.
func (d *Document) Insert(e Entry) error {
	if !ValidPath(e.Path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, e.Path)
	}

	segs := strings.Split(e.Path, ".")
	parents, last := segs[:len(segs)-1], segs[len(segs)-1]

	// Check the whole path before creating anything.
	node := d.root
	for i, seg := range parents {
		child, exists := node[seg]
		if !exists {
			break
		}
		obj, ok := child.(map[string]any)
		if !ok || isEntry(obj) {
			return fmt.Errorf("%w: %s", ErrPathBlocked, strings.Join(segs[:i+1], "."))
		}
		node = obj
		if i == len(parents)-1 {
			if _, exists := node[last]; exists {
				return fmt.Errorf("%w: %s", ErrPathOccupied, e.Path)
			}
		}
	}
	if len(parents) == 0 {
		if _, exists := d.root[last]; exists {
			return fmt.Errorf("%w: %s", ErrPathOccupied, e.Path)
		}
	}

	node = d.root
	for _, seg := range parents {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}
	node[last] = fromEntry(e)
	return nil
}

// Bytes serializes the document with sorted keys and two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func walk(node map[string]any, prefix string, fn func(Entry)) {
	for name, child := range node {
		obj, ok := child.(map[string]any)
		if !ok {
			continue
		}
		path := join(prefix, name)
		if isEntry(obj) {
			if e, err := toEntry(path, obj); err == nil {
				fn(e)
			}
			continue
		}
		walk(obj, path, fn)
	}
}

func isEntry(obj map[string]any) bool {
	_, ok := obj["env"].(string)
	return ok
}

func toEntry(path string, obj map[string]any) (Entry, error) {
	e := Entry{Path: path}

	env, ok := obj["env"].(string)
	if !ok || env == "" {
		return Entry{}, fmt.Errorf("%s: \"env\" must be a non-empty string", path)
	}
	e.Env = env

	if v, exists := obj["required"]; exists {
		b, ok := v.(bool)
		if !ok {
			return Entry{}, fmt.Errorf("%s: \"required\" must be a boolean", path)
		}
		e.Required = b
	}

	if v, exists := obj["label"]; exists {
		s, ok := v.(string)
		if !ok {
			return Entry{}, fmt.Errorf("%s: \"label\" must be a string", path)
		}
		e.Label = s
	}

	if v, exists := obj["default"]; exists && v != nil {
		s := fmt.Sprint(v)
		e.Default = &s
	}

	return e, nil
}

func fromEntry(e Entry) map[string]any {
	obj := map[string]any{
		"env":      e.Env,
		"required": e.Required,
	}
	if e.Label != "" {
		obj["label"] = e.Label
	}
	if e.Default != nil {
		obj["default"] = *e.Default
	}
	return obj
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
