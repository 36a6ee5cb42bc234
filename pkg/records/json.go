package records

import (
	"context"
	"io"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
)

var (
	airtableRecords = jp.MustParseString("$.records[*]")
	airtableID      = jp.MustParseString("$.id")
	airtableFields  = jp.MustParseString("$.fields")
)

// JSONSource reads a bundle file holding all three collections:
//
//	{
//	  "categories":    [{"id": "c1", "Category Name": "A"}],
//	  "subcategories": {"records": [{"id": "s1", "fields": {...}}]},
//	  "solutions":     [...]
//	}
//
// A collection may be a plain array of rows or an Airtable export. Absent
// collections load as empty.
type JSONSource struct {
	Path string
}

// Load reads and decodes the bundle at s.Path.
func (s JSONSource) Load(ctx context.Context) (Collections, error) {
	if err := errs.ValidatePath(s.Path); err != nil {
		return Collections{}, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return Collections{}, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "open %s", s.Path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadJSON decodes a bundle from r. See [JSONSource] for the layout.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Collections, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Collections{}, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "read bundle")
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return Collections{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse bundle")
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Collections{}, errs.New(errs.ErrCodeInvalidInput, "bundle must be a JSON object")
	}

	var c Collections
	for _, kind := range Kinds {
		rows, err := decodeCollection(obj[string(kind)])
		if err != nil {
			return Collections{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "collection %s", kind)
		}
		c.Set(kind, rows)
	}
	return c, nil
}

// DecodeAirtable flattens an Airtable export ({"records":[...]}) into rows.
// Each row holds the record's fields plus its record ID under [FieldID],
// unless the fields already carry one.
func DecodeAirtable(export any) []Row {
	var rows []Row
	for _, rec := range airtableRecords.Get(export) {
		row := Row{}
		if fields, ok := airtableFields.First(rec).(map[string]any); ok {
			for k, v := range fields {
				row[k] = v
			}
		}
		if !row.Has(FieldID) {
			if id := airtableID.First(rec); id != nil {
				row[FieldID] = id
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func decodeCollection(v any) ([]Row, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		rows := make([]Row, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidInput, "row %d is not an object", i)
			}
			rows = append(rows, Row(m))
		}
		return rows, nil
	case map[string]any:
		if _, ok := t["records"]; !ok {
			return nil, errs.New(errs.ErrCodeInvalidInput, "object collection without records")
		}
		return DecodeAirtable(t), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unexpected %T", v)
	}
}
