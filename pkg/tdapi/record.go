package tdapi

import (
	"encoding/json"
	"sort"
	"time"
)

// RecordKind names the type of a record; it equals the XML element name.
type RecordKind string

const (
	// KindServer is returned by getServerInfo.
	KindServer RecordKind = "server"
	// KindFolder is a task folder.
	KindFolder RecordKind = "folder"
	// KindContext is a task context.
	KindContext RecordKind = "context"
	// KindGoal is a goal tasks can contribute to.
	KindGoal RecordKind = "goal"
	// KindAccount is returned by getAccountInfo.
	KindAccount RecordKind = "account"
	// KindTask is a single task.
	KindTask RecordKind = "task"
	// KindNote is a notebook entry.
	KindNote RecordKind = "note"
)

// Kinds returns all record kinds known to the client.
func Kinds() []RecordKind {
	return []RecordKind{KindServer, KindFolder, KindContext, KindGoal, KindAccount, KindTask, KindNote}
}

// Record is a decoded server element. Fields hold typed values
// (string, int, bool, float64 or time.Time); absent fields are not present.
type Record struct {
	kind   RecordKind
	fields map[string]any
}

// NewRecord creates a record of the given kind. The fields map is copied.
func NewRecord(kind RecordKind, fields map[string]any) *Record {
	copied := make(map[string]any, len(fields))
	for name, value := range fields {
		copied[name] = value
	}

	return &Record{kind: kind, fields: copied}
}

// Kind returns the record kind.
func (r *Record) Kind() RecordKind {
	return r.kind
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Has reports whether the field is present.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]

	return ok
}

// Get returns the raw decoded value of a field.
func (r *Record) Get(name string) (any, bool) {
	value, ok := r.fields[name]

	return value, ok
}

// Names returns the field names in sorted order.
func (r *Record) Names() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Fields returns a copy of all fields.
func (r *Record) Fields() map[string]any {
	copied := make(map[string]any, len(r.fields))
	for name, value := range r.fields {
		copied[name] = value
	}

	return copied
}

// String returns a string field, or "" if absent or not a string.
func (r *Record) String(name string) string {
	value, _ := r.fields[name].(string)

	return value
}

// Int returns an integer field.
func (r *Record) Int(name string) (int, bool) {
	value, ok := r.fields[name].(int)

	return value, ok
}

// Bool returns a boolean field.
func (r *Record) Bool(name string) (bool, bool) {
	value, ok := r.fields[name].(bool)

	return value, ok
}

// Float returns a floating point field.
func (r *Record) Float(name string) (float64, bool) {
	value, ok := r.fields[name].(float64)

	return value, ok
}

// Time returns a date field.
func (r *Record) Time(name string) (time.Time, bool) {
	value, ok := r.fields[name].(time.Time)

	return value, ok
}

// Title returns the record title, if any.
func (r *Record) Title() string {
	return r.String("title")
}

// ID returns the numeric record id.
func (r *Record) ID() (int, bool) {
	return r.Int("id")
}

// MarshalJSON encodes the record as its field mapping plus a "kind" entry
// when no field of that name exists.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := r.Plain()
	if _, exists := out["kind"]; !exists {
		out["kind"] = string(r.kind)
	}

	return json.Marshal(out)
}

// MarshalYAML encodes the record like MarshalJSON.
func (r *Record) MarshalYAML() (interface{}, error) {
	out := r.Plain()
	if _, exists := out["kind"]; !exists {
		out["kind"] = string(r.kind)
	}

	return out, nil
}

// Plain returns the fields with dates formatted as RFC 3339 strings, which
// makes the result safe for generic encoders and query engines.
func (r *Record) Plain() map[string]any {
	out := make(map[string]any, len(r.fields)+1)

	for name, value := range r.fields {
		if t, ok := value.(time.Time); ok {
			out[name] = t.Format(time.RFC3339)

			continue
		}

		out[name] = value
	}

	return out
}
