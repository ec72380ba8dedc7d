// Package records converts generic XML elements into typed tdapi records.
package records

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"golang.org/x/text/unicode/norm"
)

// Decoder converts the raw text of a field into its typed value.
type Decoder func(raw string) (any, error)

// fieldDecoders is the schema of every record kind the service returns.
var fieldDecoders = map[tdapi.RecordKind]map[string]Decoder{
	tdapi.KindServer: {
		"unixtime":     DecodeInt,
		"date":         DecodeLocalDate,
		"tokenexpires": DecodeFloat,
	},
	tdapi.KindFolder: {
		"id":       DecodeInt,
		"archived": DecodeBool,
		"private":  DecodeBool,
		"order":    DecodeInt,
	},
	tdapi.KindContext: {
		"id":  DecodeInt,
		"def": DecodeBool,
	},
	tdapi.KindGoal: {
		"id":          DecodeInt,
		"level":       DecodeInt,
		"contributes": DecodeInt,
		"archived":    DecodeBool,
	},
	tdapi.KindAccount: {
		"userid":           DecodeString,
		"alias":            DecodeString,
		"pro":              DecodeBool,
		"dateformat":       DecodeInt,
		"timezone":         DecodeInt,
		"hidemonths":       DecodeInt,
		"hotlistpriority":  DecodeInt,
		"hotlistduedate":   DecodeInt,
		"lastaddedit":      DecodeString,
		"lastdelete":       DecodeString,
		"lastfolderedit":   DecodeString,
		"lastcontextedit":  DecodeString,
		"lastgoaledit":     DecodeString,
		"lastnotebookedit": DecodeString,
	},
	tdapi.KindTask: {
		"id":           DecodeInt,
		"parent":       DecodeInt,
		"children":     DecodeInt,
		"title":        DecodeText,
		"tag":          DecodeString,
		"folder":       DecodeInt,
		"context":      DecodeString,
		"goal":         DecodeString,
		"added":        DecodeString,
		"modified":     DecodeString,
		"startdate":    DecodeString,
		"starttime":    DecodeString,
		"duedate":      DecodeString,
		"duetime":      DecodeString,
		"completed":    DecodeString,
		"reminder":     DecodeInt,
		"repeat":       DecodeInt,
		"rep_advanced": DecodeString,
		"status":       DecodeInt,
		"star":         DecodeBool,
		"stamp":        DecodeString,
		"priority":     DecodeInt,
		"length":       DecodeInt,
		"timer":        DecodeInt,
		"note":         DecodeText,
	},
	tdapi.KindNote: {
		"id":       DecodeInt,
		"folder":   DecodeInt,
		"added":    DecodeString,
		"modified": DecodeString,
		"title":    DecodeText,
		"text":     DecodeText,
		"private":  DecodeBool,
		"stamp":    DecodeString,
	},
}

// Lookup returns the decoder of a field. Unknown kinds and fields are schema
// errors wrapping tdapi.ErrUnknownRecordKind and tdapi.ErrUnknownField.
func Lookup(kind tdapi.RecordKind, field string) (Decoder, error) {
	decoders, ok := fieldDecoders[kind]
	if !ok {
		return nil, &tdapi.SchemaError{Kind: kind, Err: tdapi.ErrUnknownRecordKind}
	}

	decoder, ok := decoders[field]
	if !ok {
		return nil, &tdapi.SchemaError{Kind: kind, Field: field, Err: tdapi.ErrUnknownField}
	}

	return decoder, nil
}

// Decode looks up the decoder of a field and applies it to raw.
func Decode(kind tdapi.RecordKind, field, raw string) (any, error) {
	decoder, err := Lookup(kind, field)
	if err != nil {
		return nil, err
	}

	value, err := decoder(raw)
	if err != nil {
		return nil, &tdapi.SchemaError{Kind: kind, Field: field, Value: raw, Err: err}
	}

	return value, nil
}

// KnownKind reports whether kind has a registered schema.
func KnownKind(kind tdapi.RecordKind) bool {
	_, ok := fieldDecoders[kind]

	return ok
}

// FieldNames returns the known fields of a kind in sorted order.
func FieldNames(kind tdapi.RecordKind) ([]string, error) {
	decoders, ok := fieldDecoders[kind]
	if !ok {
		return nil, &tdapi.SchemaError{Kind: kind, Err: tdapi.ErrUnknownRecordKind}
	}

	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// DecodeBool decodes "0"/"1" flags. Other integers are true when non-zero;
// anything non-numeric is malformed.
func DecodeBool(raw string) (any, error) {
	switch raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tdapi.ErrMalformedValue, err)
	}

	return n != 0, nil
}

// DecodeInt decodes a base-10 signed integer.
func DecodeInt(raw string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tdapi.ErrMalformedValue, err)
	}

	return n, nil
}

// DecodeFloat decodes a decimal floating point number.
func DecodeFloat(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tdapi.ErrMalformedValue, err)
	}

	return f, nil
}

// DecodeString returns raw unchanged.
func DecodeString(raw string) (any, error) {
	return raw, nil
}

// DecodeText returns free text in NFC form.
func DecodeText(raw string) (any, error) {
	return norm.NFC.String(raw), nil
}

// DecodeLocalDate parses a server date such as "Fri, 05 Dec 2008 05:32:10 -0600".
// Only the fixed-width prefix is read; the trailing zone is ignored because
// the server always emits UTC-6. The result is rebased onto the local wall
// clock using the local offset in effect at decode time.
func DecodeLocalDate(raw string) (any, error) {
	return decodeLocalDate(raw, time.Now())
}

func decodeLocalDate(raw string, now time.Time) (time.Time, error) {
	prefix := raw
	if len(prefix) > constants.ServerDatePrefixLen {
		prefix = prefix[:constants.ServerDatePrefixLen]
	}

	parsed, err := time.Parse(constants.ServerDateLayout, prefix)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", tdapi.ErrMalformedValue, err)
	}

	_, offsetSeconds := now.Zone()
	wall := parsed.Add(constants.ServerUTCOffset + time.Duration(offsetSeconds)*time.Second)

	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, now.Location()), nil
}
