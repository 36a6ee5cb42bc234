package records

import (
	"context"
	"regexp"
)

var (
	recordRef = regexp.MustCompile(`"(rec[a-zA-Z0-9]+)"`)
	recordID  = regexp.MustCompile(`^rec[a-zA-Z0-9]+$`)
)

// Labelize returns a copy of c in which subcategory parent references that
// are Airtable record IDs are replaced by the referenced category's name.
// IDs with no matching category become "Unknown(<id>)". Other collections
// are returned unchanged.
func Labelize(c Collections) Collections {
	names := make(map[string]string, len(c.Categories))
	for _, row := range c.Categories {
		if id := row.String(FieldID); id != "" {
			names[id] = row.First(FieldCategoryName, FieldName)
		}
	}
	label := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "Unknown(" + id + ")"
	}

	out := c
	out.Subcategories = make([]Row, len(c.Subcategories))
	for i, row := range c.Subcategories {
		row = row.Clone()
		switch v := row[FieldParentCategory].(type) {
		case string:
			row[FieldParentCategory] = recordRef.ReplaceAllStringFunc(v, func(m string) string {
				return `"` + label(m[1:len(m)-1]) + `"`
			})
		case []any:
			refs := make([]any, len(v))
			for j, e := range v {
				if s, ok := e.(string); ok && recordID.MatchString(s) {
					refs[j] = label(s)
				} else {
					refs[j] = e
				}
			}
			row[FieldParentCategory] = refs
		}
		out.Subcategories[i] = row
	}
	return out
}

// Labelized wraps src so every load is passed through [Labelize].
func Labelized(src Source) Source {
	return SourceFunc(func(ctx context.Context) (Collections, error) {
		c, err := src.Load(ctx)
		if err != nil {
			return c, err
		}
		return Labelize(c), nil
	})
}
