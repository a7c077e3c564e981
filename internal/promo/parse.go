package promo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/chango-api/internal/store"
)

// ErrUnexpectedShape is wrapped by ParseFailure when the payload decodes to
// something that cannot carry a label (numbers, booleans, arrays).
var ErrUnexpectedShape = errors.New("unexpected promotion shape")

// ParseFailure describes why a promotion payload could not be interpreted.
type ParseFailure struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *ParseFailure) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parse promotion %q: %v", e.Raw, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ParseFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// labelFields are the object keys that carry human readable label text.
var labelFields = []string{"etiqueta", "label", "text", "descripcion", "description"}

// maxNesting bounds how many times a JSON string may wrap another JSON document.
const maxNesting = 3

var (
	multiBuyPattern = regexp.MustCompile(`\b(\d+)\s*x\s*(\d+)\b`)
	nthUnitPattern  = regexp.MustCompile(`\b(\d+)\s*(?:do|da|ro|ra)\.?(?:\s+unidad)?\s+al\s+(\d+(?:[.,]\d+)?)\s*%`)
	nthUnitReversed = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%\s*(?:off\s+)?(?:en\s+(?:la\s+|el\s+)?)?(\d+)\s*(?:do|da|ro|ra)\b`)
)

// Parse resolves the label for the given store and collapses every failure to
// None. This is the only place where parse failures are discarded.
func Parse(label Label, st store.Store) Descriptor {
	d, err := Resolve(label, st)
	if err != nil {
		return None()
	}
	return d
}

// Resolve interprets the payload for the given store. Missing or unrecognized
// promotions yield None with a nil error; malformed payloads yield None and a
// *ParseFailure.
func Resolve(label Label, st store.Store) (Descriptor, error) {
	if label.IsZero() {
		return None(), nil
	}
	raw := bytes.TrimSpace(label.Bytes())
	if !json.Valid(raw) && !looksLikeJSON(string(raw)) && raw[0] != '[' {
		// Unquoted text straight from the data source.
		return ParseText(string(raw)), nil
	}
	return resolveJSON(raw, st, 0)
}

func resolveJSON(raw []byte, st store.Store, depth int) (Descriptor, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return None(), &ParseFailure{Raw: string(raw), Err: err}
	}
	return resolveValue(raw, value, st, depth)
}

func resolveValue(raw []byte, value any, st store.Store, depth int) (Descriptor, error) {
	switch v := value.(type) {
	case nil:
		return None(), nil
	case string:
		text := strings.TrimSpace(v)
		if looksLikeJSON(text) {
			if depth >= maxNesting {
				return None(), &ParseFailure{Raw: text, Err: errors.New("promotion nested too deeply")}
			}
			return resolveJSON([]byte(text), st, depth+1)
		}
		return ParseText(text), nil
	case map[string]any:
		if entry, ok := storeEntry(v, st); ok {
			return resolveEntry(raw, entry)
		}
		if text, ok := labelText(v); ok {
			return ParseText(text), nil
		}
		return None(), nil
	default:
		return None(), &ParseFailure{Raw: string(raw), Err: ErrUnexpectedShape}
	}
}

// resolveEntry handles the value found under a store key: a label string or an
// object carrying a label field.
func resolveEntry(raw []byte, entry any) (Descriptor, error) {
	switch v := entry.(type) {
	case nil:
		return None(), nil
	case string:
		return ParseText(v), nil
	case map[string]any:
		if text, ok := labelText(v); ok {
			return ParseText(text), nil
		}
		return None(), nil
	default:
		return None(), &ParseFailure{Raw: string(raw), Err: ErrUnexpectedShape}
	}
}

// storeEntry selects the object entry for the store. Candidates are tried in
// order: lowercased name, name without separators, key, slug. Keys are scanned in
// sorted order so duplicate spellings resolve deterministically.
func storeEntry(obj map[string]any, st store.Store) (any, bool) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	name := strings.ToLower(strings.TrimSpace(st.Name))
	candidates := []string{name, store.Slugify(st.Name), strings.ToLower(st.Key), strings.ToLower(st.Slug)}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		for _, k := range keys {
			if strings.EqualFold(strings.TrimSpace(k), candidate) {
				return obj[k], true
			}
		}
	}
	slug := store.Slugify(st.Name)
	for _, k := range keys {
		if slug != "" && store.Slugify(k) == slug {
			return obj[k], true
		}
	}
	return nil, false
}

func labelText(obj map[string]any) (string, bool) {
	for _, field := range labelFields {
		for k, v := range obj {
			if !strings.EqualFold(k, field) {
				continue
			}
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func looksLikeJSON(text string) bool {
	return strings.HasPrefix(text, "{") || strings.HasPrefix(text, "\"")
}

// ParseText matches resolved label text against the known promotion patterns.
func ParseText(text string) Descriptor {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return None()
	}
	if m := multiBuyPattern.FindStringSubmatch(lower); m != nil {
		n, errN := strconv.Atoi(m[1])
		paid, errM := strconv.Atoi(m[2])
		if errN == nil && errM == nil {
			if d := MultiBuy(n, paid); d.Kind != KindNone {
				return d
			}
		}
	}
	if m := nthUnitPattern.FindStringSubmatch(lower); m != nil {
		if d := nthUnit(m[1], m[2]); d.Kind != KindNone {
			return d
		}
	}
	if m := nthUnitReversed.FindStringSubmatch(lower); m != nil {
		if d := nthUnit(m[2], m[1]); d.Kind != KindNone {
			return d
		}
	}
	return None()
}

func nthUnit(nText, percentText string) Descriptor {
	n, err := strconv.Atoi(nText)
	if err != nil {
		return None()
	}
	percent, err := decimal.NewFromString(strings.ReplaceAll(percentText, ",", "."))
	if err != nil {
		return None()
	}
	return NthUnit(n, percent)
}
