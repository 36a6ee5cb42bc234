package hierarchy_test

import (
	"fmt"

	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/records"
)

func ExampleBuild() {
	categories := []records.Row{
		{"id": "c1", "Category Name": "Water"},
		{"id": "c2", "Category Name": "Heat"},
	}
	subcategories := []records.Row{
		{"id": "s1", "Subcategory Name": "Flooding", "Parent Category": "['Water']"},
	}
	solutions := []records.Row{
		{"solution_name": "Levees", "subcategory": "Flooding"},
		{"solution_name": "Cool roofs", "category": "Heat"},
		{"solution_name": "Rain gardens", "category": "Soil"},
	}

	root := hierarchy.Build(categories, subcategories, solutions)
	hierarchy.Walk(root, func(n *hierarchy.Node, depth int) bool {
		fmt.Printf("%*s%s\n", depth*2, "", n.Name)
		return true
	})
	// Output:
	// All Categories
	//   Water
	//     Flooding
	//       Levees
	//   Heat
	//     Cool roofs
	//   Uncategorized
	//     Rain gardens
}
