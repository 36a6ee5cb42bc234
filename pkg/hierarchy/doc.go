// Package hierarchy builds the rooted category tree from flat records.
//
// [Build] turns three independent record collections into one tree:
//
//	All Categories
//	├── <category>            one per category row with id and name
//	│   └── <subcategory>     attached to the first matching parent category
//	│       └── <solution>    attached by subcategory name, else category name
//	├── <subcategory>         whose parent list matched nothing
//	└── Uncategorized         created on demand for unresolved solutions
//	    └── <solution>
//
// Construction never fails. Rows missing an id or name are skipped, a
// malformed parent list sends the subcategory to the root, and a solution
// whose references match nothing lands under the shared Uncategorized node.
// Finally every category, subcategory or Uncategorized node left without
// children is pruned, recursively. The root survives even when empty.
//
// # Name Resolution
//
// Parents are resolved by name with a first-match linear scan in insertion
// order. When two categories share a name, the one seen first wins; such
// collisions are counted in [Report.DuplicateNames] and logged.
//
// # Values
//
// Solution leaves carry Value 1. Internal nodes carry no value; summing is
// left to the partition layout.
package hierarchy
