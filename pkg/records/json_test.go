package records

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
)

const plainBundle = `{
  "categories": [{"id": "c1", "Category Name": "A"}],
  "subcategories": [{"id": "s1", "Subcategory Name": "B", "Parent Category": "['A']"}],
  "solutions": [{"solution_name": "X", "subcategory": "B"}]
}`

const airtableBundle = `{
  "categories": {"records": [{"id": "c1", "fields": {"Category Name": "A"}}]},
  "subcategories": {"records": [{"id": "s1", "fields": {"Subcategory Name": "B", "Parent Category": "['A']"}}]},
  "solutions": {"records": [{"id": "recSol", "fields": {"id": "x1", "solution_name": "X", "subcategory": "B"}}]}
}`

func TestReadJSONFlattensAirtableExports(t *testing.T) {
	plain, err := ReadJSON(strings.NewReader(plainBundle))
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	air, err := ReadJSON(strings.NewReader(airtableBundle))
	if err != nil {
		t.Fatalf("airtable: %v", err)
	}

	checks := []struct {
		kind  Kind
		field string
	}{
		{KindCategories, FieldID},
		{KindCategories, FieldCategoryName},
		{KindSubcategories, FieldID},
		{KindSubcategories, FieldSubcategoryName},
		{KindSubcategories, FieldParentCategory},
		{KindSolutions, FieldSolutionName},
		{KindSolutions, FieldSolutionSubcategory},
	}
	for _, c := range checks {
		p, a := plain.Get(c.kind), air.Get(c.kind)
		if len(p) != 1 || len(a) != 1 {
			t.Fatalf("%s: got %d and %d rows", c.kind, len(p), len(a))
		}
		if p[0].String(c.field) != a[0].String(c.field) {
			t.Errorf("%s.%s: plain %q, airtable %q", c.kind, c.field, p[0].String(c.field), a[0].String(c.field))
		}
	}

	if got := air.Solutions[0].String(FieldID); got != "x1" {
		t.Errorf("fields id should win over record id, got %q", got)
	}
}

func TestReadJSONMissingCollections(t *testing.T) {
	c, err := ReadJSON(strings.NewReader(`{"categories": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"categories": [`},
		{"not object", `[1, 2]`},
		{"row not object", `{"solutions": ["x"]}`},
		{"object without records", `{"solutions": {"rows": []}}`},
		{"scalar collection", `{"solutions": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want code %s", err, errs.ErrCodeInvalidInput)
			}
		})
	}
}

func TestJSONSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, []byte(plainBundle), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := JSONSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	_, err = JSONSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	if !errs.Is(err, errs.ErrCodeSourceUnavailable) {
		t.Errorf("missing file error = %v", err)
	}
}
