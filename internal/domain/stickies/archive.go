package stickies

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// Node is one value of a decoded archive document: a Mapping, a Sequence or
// a Scalar.
type Node interface {
	isNode()
}

type Entry struct {
	Key   string
	Value Node
}

// Mapping keeps its entries sorted by key so that walks are deterministic.
type Mapping struct {
	Entries []Entry
}

type Sequence struct {
	Items []Node
}

// Scalar holds a leaf value as decoded: string, []byte, bool, numbers or
// time.Time.
type Scalar struct {
	Value any
}

func (Mapping) isNode()  {}
func (Sequence) isNode() {}
func (Scalar) isNode()   {}

// Get looks up key ignoring case; an exact match wins over a folded one.
func (m Mapping) Get(key string) (Node, bool) {
	var folded Node
	found := false
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
		if !found && strings.EqualFold(e.Key, key) {
			folded = e.Value
			found = true
		}
	}
	return folded, found
}

// NodeFromValue converts a generically decoded document (maps, slices and
// leaves, as produced by property-list or JSON decoders) into a Node tree.
func NodeFromValue(v any) Node {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := Mapping{Entries: make([]Entry, 0, len(keys))}
		for _, k := range keys {
			m.Entries = append(m.Entries, Entry{Key: k, Value: NodeFromValue(t[k])})
		}
		return m
	case []any:
		s := Sequence{Items: make([]Node, 0, len(t))}
		for _, item := range t {
			s.Items = append(s.Items, NodeFromValue(item))
		}
		return s
	case []byte:
		return Scalar{Value: t}
	case nil:
		return Scalar{}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		sort.Strings(keys)
		m := Mapping{Entries: make([]Entry, 0, len(keys))}
		for _, k := range keys {
			m.Entries = append(m.Entries, Entry{Key: k, Value: NodeFromValue(values[k])})
		}
		return m
	case reflect.Slice, reflect.Array:
		s := Sequence{Items: make([]Node, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			s.Items = append(s.Items, NodeFromValue(rv.Index(i).Interface()))
		}
		return s
	}
	return Scalar{Value: v}
}

// ArchiveSchema declares which keys identify notes inside an archive and
// where their payload and timestamps live. Versions exist because the
// vendor format is undocumented and the key names are heuristic.
type ArchiveSchema struct {
	Version          string
	CandidatePattern *regexp.Regexp
	PayloadKeys      []string
	WrapperKeys      []string
	CreatedPattern   *regexp.Regexp
	ModifiedPattern  *regexp.Regexp
}

var DefaultArchiveSchema = ArchiveSchema{
	Version:          "v1",
	CandidatePattern: regexp.MustCompile(`(?i)rtf|nsrtf|rtfd|textdata`),
	PayloadKeys:      []string{"RTFD", "RTFDData", "RTF", "RTFData", "NSRTF", "NSRTFD", "TextData", "Data"},
	WrapperKeys:      []string{"NS.data", "NS.bytes", "data", "bytes"},
	CreatedPattern:   regexp.MustCompile(`(?i)creat|birth`),
	ModifiedPattern:  regexp.MustCompile(`(?i)modif|update`),
}

// IsCandidate reports whether any key of m marks it as a note.
func (s ArchiveSchema) IsCandidate(m Mapping) bool {
	for _, e := range m.Entries {
		if s.CandidatePattern.MatchString(e.Key) {
			return true
		}
	}
	return false
}

// Payload probes PayloadKeys in order and unwraps a one-level wrapper
// mapping through WrapperKeys. It returns false when nothing usable exists.
func (s ArchiveSchema) Payload(m Mapping) ([]byte, bool) {
	for _, key := range s.PayloadKeys {
		node, ok := m.Get(key)
		if !ok {
			continue
		}
		if b, ok := scalarBytes(node); ok {
			return b, true
		}
		wrapper, ok := node.(Mapping)
		if !ok {
			continue
		}
		for _, inner := range s.WrapperKeys {
			innerNode, ok := wrapper.Get(inner)
			if !ok {
				continue
			}
			if b, ok := scalarBytes(innerNode); ok {
				return b, true
			}
		}
	}
	return nil, false
}

func scalarBytes(n Node) ([]byte, bool) {
	sc, ok := n.(Scalar)
	if !ok {
		return nil, false
	}
	switch v := sc.Value.(type) {
	case []byte:
		return v, len(v) > 0
	case string:
		return []byte(v), v != ""
	}
	return nil, false
}
