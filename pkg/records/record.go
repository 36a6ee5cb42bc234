package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// Field names used by the upstream tables. Category and subcategory rows
// fall back to FieldName when their kind-specific name is empty.
const (
	FieldID                  = "id"
	FieldCategoryName        = "Category Name"
	FieldSubcategoryName     = "Subcategory Name"
	FieldName                = "Name"
	FieldParentCategory      = "Parent Category"
	FieldSolutionName        = "solution_name"
	FieldSolutionSubcategory = "subcategory"
	FieldSolutionCategory    = "category"
)

// Kind names one of the three record collections.
type Kind string

const (
	KindCategories    Kind = "categories"
	KindSubcategories Kind = "subcategories"
	KindSolutions     Kind = "solutions"
)

// Kinds lists the collection kinds in load order.
var Kinds = []Kind{KindCategories, KindSubcategories, KindSolutions}

// Row is one raw record.
type Row map[string]any

// String returns the field as a trimmed string. Absent and nil values yield
// "". Numbers are formatted without trailing zeros and lists are encoded as
// JSON so a list-valued field reads the same as its serialized form.
func (r Row) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		return oj.JSON(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// First returns the first non-empty field among fields.
func (r Row) First(fields ...string) string {
	for _, f := range fields {
		if v := r.String(f); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether the field is present with a non-empty value.
func (r Row) Has(field string) bool {
	return r.String(field) != ""
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Collections holds the three record collections keyed by entity type.
type Collections struct {
	Categories    []Row `json:"categories"`
	Subcategories []Row `json:"subcategories"`
	Solutions     []Row `json:"solutions"`
}

// Get returns the collection for kind.
func (c Collections) Get(kind Kind) []Row {
	switch kind {
	case KindCategories:
		return c.Categories
	case KindSubcategories:
		return c.Subcategories
	case KindSolutions:
		return c.Solutions
	}
	return nil
}

// Set replaces the collection for kind.
func (c *Collections) Set(kind Kind, rows []Row) {
	switch kind {
	case KindCategories:
		c.Categories = rows
	case KindSubcategories:
		c.Subcategories = rows
	case KindSolutions:
		c.Solutions = rows
	}
}

// Len returns the total number of rows across all collections.
func (c Collections) Len() int {
	return len(c.Categories) + len(c.Subcategories) + len(c.Solutions)
}

// Source materializes record collections.
type Source interface {
	Load(ctx context.Context) (Collections, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) (Collections, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (Collections, error) {
	return f(ctx)
}

// Static returns a Source that always yields c.
func Static(c Collections) Source {
	return SourceFunc(func(context.Context) (Collections, error) { return c, nil })
}
