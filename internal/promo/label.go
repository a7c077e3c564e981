package promo

import (
	"bytes"
	"encoding/json"
)

// Label holds a promotion payload exactly as the data source delivered it. It
// can be a plain string, a JSON-encoded string, an object keyed by store or null.
type Label struct {
	raw json.RawMessage
}

// TextLabel wraps plain label text such as "2x1".
func TextLabel(text string) Label {
	data, _ := json.Marshal(text)
	return Label{raw: data}
}

// RawLabel wraps an arbitrary payload without validating it.
func RawLabel(data []byte) Label {
	return Label{raw: append(json.RawMessage(nil), data...)}
}

// IsZero reports whether the label carries nothing.
func (l Label) IsZero() bool {
	trimmed := bytes.TrimSpace(l.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Bytes returns the raw payload.
func (l Label) Bytes() []byte {
	return l.raw
}

// UnmarshalJSON keeps the payload untouched; interpretation happens in Resolve.
func (l *Label) UnmarshalJSON(data []byte) error {
	l.raw = append(l.raw[:0], data...)
	return nil
}

// MarshalJSON emits the original payload. Payloads that are not valid JSON are
// emitted as a JSON string so encoding never fails.
func (l Label) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	if json.Valid(l.raw) {
		return l.raw, nil
	}
	return json.Marshal(string(l.raw))
}
