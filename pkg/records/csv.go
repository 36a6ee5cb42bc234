package records

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
)

// CSVDir reads categories.csv, subcategories.csv and solutions.csv from a
// directory. The first line of each file names the fields. A missing file
// loads as an empty collection.
type CSVDir struct {
	Dir string
}

// Load reads all three files.
func (d CSVDir) Load(ctx context.Context) (Collections, error) {
	if err := errs.ValidatePath(d.Dir); err != nil {
		return Collections{}, err
	}
	var c Collections
	for _, kind := range Kinds {
		if err := ctx.Err(); err != nil {
			return Collections{}, err
		}
		rows, err := readCSVFile(filepath.Join(d.Dir, string(kind)+".csv"))
		if err != nil {
			return Collections{}, err
		}
		c.Set(kind, rows)
	}
	return c, nil
}

func readCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "open %s", path)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return rows, nil
}

// ReadCSV decodes rows from r using the header line as field names.
// Short rows leave trailing fields absent.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, v := range rec {
			if i < len(header) {
				row[header[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
