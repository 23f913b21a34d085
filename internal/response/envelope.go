package response

import (
	"encoding/json"

	"bmxfeed/internal/codec"
	"bmxfeed/internal/errors"
	"bmxfeed/pkg/exception"
)

// Envelope is a structured frame decoded into its top-level fields.
// It lives only for the duration of one dispatch.
type Envelope struct {
	text   string
	fields map[string]json.RawMessage

	table     string
	hasTable  bool
	tableRead bool
}

// DecodeEnvelope decodes text as a JSON object.
func DecodeEnvelope(text string) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := codec.UnmarshalString(text, &fields); err != nil {
		return nil, errors.Mark(exception.ErrMalformedPayload, err)
	}

	if fields == nil {
		return nil, exception.ErrNotAnObject
	}

	return &Envelope{text: text, fields: fields}, nil
}

// Text returns the frame text the envelope was decoded from.
func (e *Envelope) Text() string {
	if e == nil {
		return ""
	}
	return e.text
}

// Has reports whether key is present with a non-null value.
func (e *Envelope) Has(key string) bool {
	if e == nil {
		return false
	}
	raw, ok := e.fields[key]
	return ok && !isNull(raw)
}

// String returns the string value of key.
func (e *Envelope) String(key string) (string, bool) {
	if !e.Has(key) {
		return "", false
	}
	var s string
	if err := codec.Unmarshal(e.fields[key], &s); err != nil {
		return "", false
	}
	return s, true
}

// Bool returns the boolean value of key.
func (e *Envelope) Bool(key string) (bool, bool) {
	if !e.Has(key) {
		return false, false
	}
	var b bool
	if err := codec.Unmarshal(e.fields[key], &b); err != nil {
		return false, false
	}
	return b, true
}

// Table returns the "table" discriminator.
func (e *Envelope) Table() (string, bool) {
	if e == nil {
		return "", false
	}
	if !e.tableRead {
		e.table, e.hasTable = e.String("table")
		e.tableRead = true
	}
	return e.table, e.hasTable
}

// Decode decodes the value of key into v.
func (e *Envelope) Decode(key string, v any) error {
	if e == nil {
		return exception.ErrNilInstance
	}
	raw, ok := e.fields[key]
	if !ok {
		return errors.Wrapf(exception.ErrFieldMissing, "key: %s", key)
	}
	if err := codec.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "decode key: %s", key)
	}
	return nil
}

// DecodeAll decodes the whole frame into v.
func (e *Envelope) DecodeAll(v any) error {
	if e == nil {
		return exception.ErrNilInstance
	}
	if err := codec.UnmarshalString(e.text, v); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
