package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const tableTimeLayout = "2006-01-02 15:04:05"

// leadingColumns are shown first, in this order, when present.
var leadingColumns = []string{"id", "title"}

// Printer renders command results in the selected format, optionally
// filtered through a jq expression.
type Printer struct {
	out    io.Writer
	format string
	query  string
}

// NewPrinter creates a printer. An empty format selects the table format.
func NewPrinter(out io.Writer, format, query string) (*Printer, error) {
	if format == "" {
		format = constants.FormatTable
	}

	if !validOutputFormat(format) {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
	}

	return &Printer{out: out, format: format, query: query}, nil
}

// Records renders a list of records, one table row per record.
func (p *Printer) Records(records []*tdapi.Record) error {
	if p.query != "" {
		return p.queried(records)
	}

	switch p.format {
	case constants.FormatJSON:
		return p.json(records)
	case constants.FormatYAML:
		return p.yaml(records)
	default:
		return p.recordsTable(records)
	}
}

// Record renders a single record as a property table.
func (p *Printer) Record(record *tdapi.Record) error {
	if p.query != "" {
		return p.queried(record)
	}

	switch p.format {
	case constants.FormatJSON:
		return p.json(record)
	case constants.FormatYAML:
		return p.yaml(record)
	default:
		table := tablewriter.NewWriter(p.out)
		table.Header("Property", "Value")

		for _, name := range orderedColumns(record.Names()) {
			value, _ := record.Get(name)
			_ = table.Append(columnTitle(name), formatCell(value))
		}

		return renderTable(table)
	}
}

// Properties renders a flat result such as an added record ID.
func (p *Printer) Properties(properties map[string]string) error {
	if p.query != "" {
		return p.queried(properties)
	}

	switch p.format {
	case constants.FormatJSON:
		return p.json(properties)
	case constants.FormatYAML:
		return p.yaml(properties)
	default:
		names := make([]string, 0, len(properties))
		for name := range properties {
			names = append(names, name)
		}

		table := tablewriter.NewWriter(p.out)
		table.Header("Property", "Value")

		for _, name := range orderedColumns(names) {
			_ = table.Append(columnTitle(name), properties[name])
		}

		return renderTable(table)
	}
}

func (p *Printer) json(value any) error {
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}

func (p *Printer) yaml(value any) error {
	encoder := yaml.NewEncoder(p.out)
	defer func() { _ = encoder.Close() }()

	return encoder.Encode(value)
}

func (p *Printer) recordsTable(records []*tdapi.Record) error {
	seen := make(map[string]bool)

	var names []string

	for _, record := range records {
		for _, name := range record.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	columns := orderedColumns(names)

	headers := make([]any, len(columns))
	for i, name := range columns {
		headers[i] = columnTitle(name)
	}

	table := tablewriter.NewWriter(p.out)
	table.Header(headers...)

	for _, record := range records {
		row := make([]string, len(columns))

		for i, name := range columns {
			value, ok := record.Get(name)
			if !ok {
				row[i] = constants.NotAvailable

				continue
			}

			row[i] = formatCell(value)
		}

		_ = table.Append(row)
	}

	return renderTable(table)
}

// queried prints every jq result. Scalars go out bare in table mode so the
// output composes with shell pipelines.
func (p *Printer) queried(value any) error {
	results, err := runQuery(p.query, value)
	if err != nil {
		return err
	}

	for _, result := range results {
		if p.format == constants.FormatTable {
			if s, ok := result.(string); ok {
				_, _ = fmt.Fprintln(p.out, s)

				continue
			}
		}

		if p.format == constants.FormatYAML {
			err = p.yaml(result)
		} else {
			err = p.json(result)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// runQuery evaluates a jq expression. The input is normalized through JSON
// so records reach gojq as plain maps.
func runQuery(expression string, value any) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidQuery, err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidQuery, err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query input: %w", err)
	}

	var input any

	err = json.Unmarshal(data, &input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode query input: %w", err)
	}

	var results []any

	iter := code.Run(input)

	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}

			return nil, fmt.Errorf("query failed: %w", err)
		}

		results = append(results, v)
	}

	return results, nil
}

// orderedColumns puts the leading columns first and sorts the rest.
func orderedColumns(names []string) []string {
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	columns := make([]string, 0, len(names))

	for _, name := range leadingColumns {
		if present[name] {
			columns = append(columns, name)
			delete(present, name)
		}
	}

	rest := make([]string, 0, len(present))
	for name := range present {
		rest = append(rest, name)
	}

	sort.Strings(rest)

	return append(columns, rest...)
}

func columnTitle(name string) string {
	if strings.EqualFold(name, "id") {
		return "ID"
	}

	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}

		return "no"
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(tableTimeLayout)
	default:
		return fmt.Sprint(v)
	}
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
