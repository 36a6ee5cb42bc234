// Package records loads the flat record collections a hierarchy is built from.
//
// Three collections feed the builder: categories, subcategories and
// solutions. Each row is an untyped mapping of field name to value, exactly
// as exported by the upstream table store. Rows are not validated here;
// missing or malformed fields are the hierarchy builder's concern, and it
// degrades by omission rather than failing.
//
// # Sources
//
// A [Source] materializes all three collections at once:
//
//   - [JSONSource]: a single bundle file, each collection either a plain
//     array of rows or an Airtable-style export ({"records":[{"id","fields"}]})
//   - [CSVDir]: a directory holding categories.csv, subcategories.csv and
//     solutions.csv with a header row
//   - [MongoSource]: three MongoDB collections loaded concurrently
//
// # Labelizing
//
// Airtable exports reference parent categories by record ID ("recXXXX").
// [Labelize] rewrites those references into category names so the
// builder can resolve parents by name:
//
//	c, _ := records.JSONSource{Path: "bundle.json"}.Load(ctx)
//	c = records.Labelize(c)
//	root := hierarchy.Build(c.Categories, c.Subcategories, c.Solutions)
package records
