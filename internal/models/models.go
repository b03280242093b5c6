package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Record is one API request definition from the export file.
//
// Every member is kept as the raw JSON it was loaded from. ID and Name are
// decoded views for sorting and logging; changing them does not change the
// encoded record. Only url and headers are re-encoded from the struct.
type Record struct {
	ID      int64
	Name    string
	URL     string
	Headers []Header

	hasURL     bool
	hasHeaders bool
	fields     map[string]json.RawMessage
}

// Header is one {key, value} entry of a record's headers list.
//
// A header loaded from JSON keeps its raw key and value; they are only
// re-encoded as strings when Key or Value is changed or SetValue is called.
type Header struct {
	Key   string
	Value string

	decoded   bool
	null      bool
	valueSet  bool
	loadedKey string
	loadedVal string
	fields    map[string]json.RawMessage
}

// NewRecord builds a record with the given id, name and url.
func NewRecord(id int64, name, url string) Record {
	nameRaw, _ := Encode(name)
	return Record{
		ID:     id,
		Name:   name,
		URL:    url,
		hasURL: true,
		fields: map[string]json.RawMessage{
			"id":   json.RawMessage(strconv.FormatInt(id, 10)),
			"name": nameRaw,
		},
	}
}

// Encode marshals v without escaping &, < and >.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// HasURL reports whether the url member was present.
func (r Record) HasURL() bool { return r.hasURL }

// HasHeaders reports whether the headers member was present.
func (r Record) HasHeaders() bool { return r.hasHeaders }

// SetURL sets the url member, adding it if it was absent.
func (r *Record) SetURL(url string) {
	r.URL = url
	r.hasURL = true
}

// SetHeaders sets the headers member, adding it if it was absent.
func (r *Record) SetHeaders(headers []Header) {
	r.Headers = headers
	r.hasHeaders = true
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	c := r
	if r.Headers != nil {
		c.Headers = make([]Header, len(r.Headers))
		copy(c.Headers, r.Headers)
	}
	if r.fields != nil {
		c.fields = make(map[string]json.RawMessage, len(r.fields))
		for k, v := range r.fields {
			c.fields[k] = v
		}
	}
	return c
}

// Field returns the raw JSON of a member as it will be written.
func (r Record) Field(name string) (json.RawMessage, bool) {
	v, ok := r.fields[name]
	return v, ok
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = Record{}
	if raw, ok := fields["id"]; ok {
		id, err := decodeID(raw)
		if err != nil {
			return err
		}
		r.ID = id
	}
	if raw, ok := fields["name"]; ok {
		r.Name = stringView(raw)
	}
	if raw, ok := fields["url"]; ok {
		if err := json.Unmarshal(raw, &r.URL); err != nil {
			return fmt.Errorf("decoding url: %w", err)
		}
		r.hasURL = true
		delete(fields, "url")
	}
	// "headers": null stays in fields so it is written back as null
	if raw, ok := fields["headers"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &r.Headers); err != nil {
			return fmt.Errorf("decoding headers: %w", err)
		}
		r.hasHeaders = true
		delete(fields, "headers")
	}
	r.fields = fields
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.fields)+2)
	for k, v := range r.fields {
		out[k] = v
	}
	if r.hasURL {
		out["url"] = r.URL
	}
	if r.hasHeaders {
		headers := r.Headers
		if headers == nil {
			headers = []Header{}
		}
		out["headers"] = headers
	}
	return Encode(out)
}

// SetValue replaces the header value, writing it as a string even when
// the loaded value was null, absent or not a string.
func (h *Header) SetValue(v string) {
	h.Value = v
	h.valueSet = true
}

func (h *Header) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		*h = Header{decoded: true, null: true}
		return nil
	}

	*h = Header{decoded: true, fields: fields}
	if raw, ok := fields["key"]; ok {
		h.Key = stringView(raw)
	}
	if raw, ok := fields["value"]; ok {
		h.Value = stringView(raw)
	}
	h.loadedKey, h.loadedVal = h.Key, h.Value
	return nil
}

func (h Header) MarshalJSON() ([]byte, error) {
	if !h.decoded {
		return Encode(map[string]string{"key": h.Key, "value": h.Value})
	}
	if h.null && !h.valueSet {
		return []byte("null"), nil
	}
	out := make(map[string]any, len(h.fields)+2)
	for k, v := range h.fields {
		out[k] = v
	}
	if h.Key != h.loadedKey {
		out["key"] = h.Key
	}
	if h.valueSet || h.Value != h.loadedVal {
		out["value"] = h.Value
	}
	return Encode(out)
}

// decodeID reads a numeric id. Fractional ids are truncated for sorting only;
// the raw member is written back unchanged.
func decodeID(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("decoding id: %w", err)
	}
	if id, err := n.Int64(); err == nil {
		return id, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("decoding id: %w", err)
	}
	return int64(f), nil
}

// stringView returns raw as a Go string if it is a JSON string, and "" otherwise.
func stringView(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Result is the outcome of submitting one record.
type Result struct {
	RecordID   int64
	Name       string
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
	Error      error
}

// Success reports whether the destination accepted the record.
func (r Result) Success() bool {
	return r.Error == nil && r.StatusCode == 200
}
