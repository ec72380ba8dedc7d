package records

import (
	"errors"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/internal/xmltree"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// Materialize converts an element into a record of the kind named by its tag.
//
// Children and attributes are decoded by field name; fields missing from the
// schema are kept as raw text. The element's own text, when not blank,
// becomes the "title" field and replaces a decoded field of that name. It goes
// through the kind's title decoder when one is registered.
func Materialize(node *xmltree.Node) (*tdapi.Record, error) {
	kind := tdapi.RecordKind(node.Tag)
	if !KnownKind(kind) {
		return nil, &tdapi.SchemaError{Kind: kind, Err: tdapi.ErrUnknownRecordKind}
	}

	fields := make(map[string]any, len(node.Children)+len(node.Attrs)+1)

	for _, child := range node.Children {
		value, err := decodeOrRaw(kind, child.Tag, child.Text)
		if err != nil {
			return nil, err
		}

		fields[child.Tag] = value
	}

	for name, raw := range node.Attrs {
		value, err := decodeOrRaw(kind, name, raw)
		if err != nil {
			return nil, err
		}

		fields[name] = value
	}

	if node.HasText() {
		value, err := decodeOrRaw(kind, constants.TitleField, node.Text)
		if err != nil {
			return nil, err
		}

		fields[constants.TitleField] = value
	}

	return tdapi.NewRecord(kind, fields), nil
}

// MaterializeList converts every child element of a list response.
func MaterializeList(node *xmltree.Node) ([]*tdapi.Record, error) {
	out := make([]*tdapi.Record, 0, len(node.Children))

	for _, child := range node.Children {
		record, err := Materialize(child)
		if err != nil {
			return nil, err
		}

		out = append(out, record)
	}

	return out, nil
}

func decodeOrRaw(kind tdapi.RecordKind, field, raw string) (any, error) {
	value, err := Decode(kind, field, raw)
	if errors.Is(err, tdapi.ErrUnknownField) {
		return raw, nil
	}

	return value, err
}
