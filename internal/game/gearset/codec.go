package gearset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cory-johannsen/walkscape/internal/game/item"
)

// ErrDecode wraps every failure to read an export string.
var ErrDecode = errors.New("gearset decode failed")

const nullItem = "null"

// Entry is one row of the export document.
type Entry struct {
	Type   string        `json:"type"`
	Index  int           `json:"index"`
	Item   string        `json:"item"`
	Errors []interface{} `json:"errors"`
}

// EntryItem is the JSON object carried, as a string, in Entry.Item.
type EntryItem struct {
	ID      string  `json:"id"`
	Quality string  `json:"quality"`
	Tag     *string `json:"tag"`
}

// Document is the decompressed export payload.
type Document struct {
	Items []Entry `json:"items"`
}

const documentSchema = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "item"],
        "properties": {
          "type": {"type": "string"},
          "index": {"type": "integer", "minimum": 0},
          "item": {"type": "string"},
          "errors": {"type": "array"}
        }
      }
    }
  }
}`

var docSchema = jsonschema.MustCompileString("gearset_export.json", documentSchema)

// Resolver maps an export (id, quality) pair to a concrete item.
type Resolver interface {
	Resolve(id string, q item.Quality) (*item.Item, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id string, q item.Quality) (*item.Item, bool)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(id string, q item.Quality) (*item.Item, bool) {
	return f(id, q)
}

// RegistryResolver resolves against reg, scaling achievement items to ap.
func RegistryResolver(reg *item.Registry, ap int) Resolver {
	return ResolverFunc(func(id string, q item.Quality) (*item.Item, bool) {
		return reg.Resolve(id, q, ap)
	})
}

// DecodeDocument reverses the export transport: base64, gzip, JSON.
//
// Postcondition: returns an error wrapping ErrDecode on malformed input.
func DecodeDocument(export string) (*Document, error) {
	s := strings.Join(strings.Fields(export), "")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("gearset: base64: %w: %v", ErrDecode, err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gearset: gzip: %w: %v", ErrDecode, err)
	}
	defer zr.Close()
	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gearset: gzip: %w: %v", ErrDecode, err)
	}
	var generic interface{}
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, fmt.Errorf("gearset: json: %w: %v", ErrDecode, err)
	}
	if err := docSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("gearset: document: %w: %v", ErrDecode, err)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("gearset: json: %w: %v", ErrDecode, err)
	}
	return &doc, nil
}

// SlotFor maps an export (type, index) pair to a position.
func SlotFor(typ string, index int) (SlotName, bool) {
	typ = strings.ToLower(typ)
	switch typ {
	case "ring":
		if index == 0 || index == 1 {
			return []SlotName{Ring1, Ring2}[index], true
		}
	case "tool", "tools":
		if index >= 0 && index < MaxTools {
			return ToolSlots[index], true
		}
	default:
		s := SlotName(typ)
		if index == 0 && s.Valid() && !s.IsRing() && !s.IsTool() {
			return s, true
		}
	}
	return "", false
}

// ParseEntryItem decodes Entry.Item. ok is false for "null" entries.
func ParseEntryItem(raw string) (EntryItem, bool, error) {
	if raw == "" || raw == nullItem {
		return EntryItem{}, false, nil
	}
	var ei EntryItem
	if err := json.Unmarshal([]byte(raw), &ei); err != nil {
		return EntryItem{}, false, fmt.Errorf("gearset: entry item: %w: %v", ErrDecode, err)
	}
	return ei, true, nil
}

// Decode reads an export string into a gearset. Entries whose slot, item
// JSON, or id cannot be resolved are skipped and returned in skipped; only a
// malformed transport or document is an error.
func Decode(export string, r Resolver) (g *Gearset, skipped []Entry, err error) {
	doc, err := DecodeDocument(export)
	if err != nil {
		return nil, nil, err
	}
	g = New()
	for _, e := range doc.Items {
		ei, ok, perr := ParseEntryItem(e.Item)
		if perr != nil {
			skipped = append(skipped, e)
			continue
		}
		if !ok {
			continue
		}
		slot, ok := SlotFor(e.Type, e.Index)
		if !ok {
			skipped = append(skipped, e)
			continue
		}
		q, _ := item.ParseQuality(ei.Quality)
		it, ok := r.Resolve(ei.ID, q)
		if !ok {
			skipped = append(skipped, e)
			continue
		}
		g.Set(slot, it)
	}
	return g, skipped, nil
}

func exportEntry(typ string, index int, it *item.Item) (Entry, error) {
	e := Entry{Type: typ, Index: index, Item: nullItem, Errors: []interface{}{}}
	if it == nil {
		return e, nil
	}
	_, q, _ := item.SplitQualitySuffix(it.Name)
	b, err := json.Marshal(EntryItem{ID: it.UUID, Quality: q.ExportName()})
	if err != nil {
		return Entry{}, fmt.Errorf("gearset: encode item %q: %w", it.Name, err)
	}
	e.Item = string(b)
	return e, nil
}

// Document builds the export document: ten gear rows, two ring rows, and six
// tool rows, in that order.
func (g *Gearset) Document() (*Document, error) {
	doc := &Document{Items: make([]Entry, 0, len(AllSlots))}
	add := func(typ string, index int, s SlotName) error {
		e, err := exportEntry(typ, index, g.Get(s))
		if err != nil {
			return err
		}
		doc.Items = append(doc.Items, e)
		return nil
	}
	for _, s := range GearSlots {
		if s.IsRing() {
			continue
		}
		if err := add(string(s), 0, s); err != nil {
			return nil, err
		}
	}
	for i, s := range []SlotName{Ring1, Ring2} {
		if err := add("ring", i, s); err != nil {
			return nil, err
		}
	}
	for i, s := range ToolSlots {
		if err := add("tool", i, s); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Encode writes g in the export format: base64 of gzip of JSON. The quality
// of each item comes from its "(Quality)" name suffix, defaulting to common.
func Encode(g *Gearset) (string, error) {
	doc, err := g.Document()
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("gearset: Encode: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return "", fmt.Errorf("gearset: Encode: gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gearset: Encode: gzip: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
