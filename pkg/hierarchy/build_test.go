package hierarchy

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/solutionmap/pkg/records"
)

func cat(id, name string) records.Row {
	return records.Row{records.FieldID: id, records.FieldCategoryName: name}
}

func sub(id, name, parents string) records.Row {
	return records.Row{records.FieldID: id, records.FieldSubcategoryName: name, records.FieldParentCategory: parents}
}

func sol(name, subcategory, category string) records.Row {
	return records.Row{
		records.FieldSolutionName:        name,
		records.FieldSolutionSubcategory: subcategory,
		records.FieldSolutionCategory:    category,
	}
}

// shape renders a tree as "name(child,child)" for compact comparisons.
func shape(n *Node) string {
	if len(n.Children) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = shape(c)
	}
	return n.Name + "(" + strings.Join(parts, ",") + ")"
}

func TestBuildEndToEnd(t *testing.T) {
	root := Build(
		[]records.Row{cat("c1", "A")},
		[]records.Row{sub("s1", "B", "['A']")},
		[]records.Row{sol("X", "B", "")},
	)

	if got, want := shape(root), "All Categories(A(B(X)))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if Find(root, UncategorizedName) != nil {
		t.Error("Uncategorized should not exist")
	}
	x := Find(root, "A", "B", "X")
	if x == nil || x.Kind != KindSolution || x.Value != 1 {
		t.Errorf("solution leaf = %+v", x)
	}
}

func TestBuildGenericNameField(t *testing.T) {
	root := Build(
		[]records.Row{{"id": "c1", "Name": "A"}},
		[]records.Row{{"id": "s1", "Name": "B", "Parent Category": "['A']"}},
		[]records.Row{{"solution_name": "X", "subcategory": "B"}},
	)
	if got, want := shape(root), "All Categories(A(B(X)))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}

	// The kind-specific field wins over Name.
	root = Build([]records.Row{{"id": "c1", "Category Name": "Energy", "Name": "ignored"}}, nil, nil)
	if Find(root, "Energy") == nil {
		t.Errorf("shape = %s, want Energy under the root", shape(root))
	}
}

func TestBuildUnmatchedSolution(t *testing.T) {
	root, report := BuildReport(nil, nil, []records.Row{sol("Y", "", "Z")})

	if got, want := shape(root), "All Categories(Uncategorized(Y))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if report.Uncategorized != 1 {
		t.Errorf("Uncategorized count = %d, want 1", report.Uncategorized)
	}
}

func TestBuildSharedUncategorized(t *testing.T) {
	root := Build(
		[]records.Row{cat("c1", "A")},
		nil,
		[]records.Row{sol("P", "", "A"), sol("Q", "nope", ""), sol("R", "", "Z")},
	)

	if got, want := shape(root), "All Categories(A(P),Uncategorized(Q,R))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	count := 0
	for _, c := range root.Children {
		if c.Name == UncategorizedName {
			count++
		}
	}
	if count != 1 {
		t.Errorf("found %d Uncategorized nodes, want 1", count)
	}
}

func TestBuildSubcategoryParents(t *testing.T) {
	tests := []struct {
		name    string
		parents any
		want    string
	}{
		{"single quoted list", "['A']", "All Categories(A(B(X)))"},
		{"double quoted list", `["A", "Nope"]`, "All Categories(A(B(X)))"},
		{"first category in insertion order wins", "['A', 'C']", "All Categories(C(B(X)))"},
		{"decoded list", []any{"A"}, "All Categories(A(B(X)))"},
		{"bare string", "'C'", "All Categories(C(B(X)))"},
		{"no match goes to root", "['Nope']", "All Categories(B(X))"},
		{"malformed goes to root", "['A'", "All Categories(B(X))"},
		{"empty goes to root", "", "All Categories(B(X))"},
		{"number is malformed", "42", "All Categories(B(X))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats := []records.Row{cat("c1", "C"), cat("c2", "A")}
			subs := []records.Row{{
				records.FieldID:              "s1",
				records.FieldSubcategoryName: "B",
				records.FieldParentCategory:  tt.parents,
			}}
			sols := []records.Row{sol("X", "B", "")}

			// Categories left without children are pruned, which keeps
			// shapes short.
			if got := shape(Build(cats, subs, sols)); got != tt.want {
				t.Errorf("shape = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildMalformedParentIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	_, report := BuildReport(
		[]records.Row{cat("c1", "A")},
		[]records.Row{sub("s1", "B", "['A'")},
		[]records.Row{sol("X", "B", "")},
		WithLogger(logger),
	)

	if report.MalformedParents != 1 || report.OrphanSubcategories != 1 {
		t.Errorf("report = %+v", report)
	}
	if !strings.Contains(buf.String(), "malformed parent category list") {
		t.Errorf("expected warning, log was %q", buf.String())
	}
}

func TestBuildSkipsIncompleteRows(t *testing.T) {
	root, report := BuildReport(
		[]records.Row{cat("", "A"), cat("c2", ""), {records.FieldID: "c3"}, cat("c4", "D")},
		[]records.Row{sub("", "B", "['D']"), sub("s2", "E", "['D']")},
		[]records.Row{sol("", "E", ""), sol("X", "E", ""), nil},
	)

	if got, want := shape(root), "All Categories(D(E(X)))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if report.SkippedCategories != 3 || report.SkippedSubcategories != 1 || report.SkippedSolutions != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestBuildSolutionFallsBackToCategory(t *testing.T) {
	root := Build(
		[]records.Row{cat("c1", "A")},
		[]records.Row{sub("s1", "B", "['A']")},
		[]records.Row{sol("X", "B", "A"), sol("Y", "missing", "A")},
	)
	if got, want := shape(root), "All Categories(A(B(X),Y))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
}

func TestBuildPrunesEmptyGroups(t *testing.T) {
	root, report := BuildReport(
		[]records.Row{cat("c1", "A"), cat("c2", "Empty")},
		[]records.Row{sub("s1", "B", "['A']"), sub("s2", "Hollow", "['A']")},
		[]records.Row{sol("X", "B", "")},
	)
	if got, want := shape(root), "All Categories(A(B(X)))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if report.Pruned != 2 {
		t.Errorf("Pruned = %d, want 2", report.Pruned)
	}
}

func TestBuildCascadingPrune(t *testing.T) {
	root := Build(
		[]records.Row{cat("c1", "A")},
		[]records.Row{sub("s1", "B", "['A']")},
		nil,
	)
	if got := shape(root); got != RootName {
		t.Errorf("shape = %s, want bare root", got)
	}
	if root.Children == nil {
		t.Error("root keeps an empty, non-nil child list")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	root := Build(nil, nil, nil)
	if root == nil || root.Name != RootName || len(root.Children) != 0 {
		t.Errorf("Build(nil) = %+v", root)
	}
}

func TestBuildRootNamedCategoryIsPrunable(t *testing.T) {
	// A category that happens to share the root's name is still a
	// category and is pruned when empty.
	root := Build([]records.Row{cat("c1", RootName)}, nil, nil)
	if len(root.Children) != 0 {
		t.Errorf("children = %d, want 0", len(root.Children))
	}
}

func TestBuildDuplicateNames(t *testing.T) {
	root, report := BuildReport(
		[]records.Row{cat("c1", "A"), cat("c2", "A")},
		nil,
		[]records.Row{sol("X", "", "A"), sol("Y", "", "A")},
	)
	if got, want := shape(root), "All Categories(A(X,Y))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if root.Children[0].ID != "c1" {
		t.Errorf("first match should win, got %s", root.Children[0].ID)
	}
	if len(report.DuplicateNames) != 1 || report.DuplicateNames[0] != "A" {
		t.Errorf("DuplicateNames = %v", report.DuplicateNames)
	}
}

func TestBuildDuplicateIDsKeepFirstPosition(t *testing.T) {
	root, report := BuildReport(
		[]records.Row{cat("c1", "A"), cat("c2", "B"), cat("c1", "C")},
		nil,
		[]records.Row{sol("X", "", "A"), sol("Y", "", "C")},
	)
	// The index entry for c1 now points at C, so A can no longer be
	// resolved and is pruned.
	if got, want := shape(root), "All Categories(C(Y),Uncategorized(X))"; got != want {
		t.Errorf("shape = %s, want %s", got, want)
	}
	if report.DuplicateIDs != 1 {
		t.Errorf("DuplicateIDs = %d, want 1", report.DuplicateIDs)
	}
}

func TestBuildIdempotent(t *testing.T) {
	cats, subs, sols := randomRecords(rand.New(rand.NewSource(7)), 20)
	a := Build(cats, subs, sols)
	b := Build(cats, subs, sols)
	if !Equal(a, b) {
		t.Error("two builds from identical input differ")
	}
	if a == b || (len(a.Children) > 0 && a.Children[0] == b.Children[0]) {
		t.Error("builds must not share nodes")
	}
}

func TestBuildInvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		cats, subs, sols := randomRecords(rng, rng.Intn(30))
		root := Build(cats, subs, sols)

		if root.Name != RootName || root.Kind != KindRoot {
			t.Fatalf("iteration %d: bad root %+v", i, root)
		}
		seen := make(map[*Node]bool)
		sinks := 0
		Walk(root, func(n *Node, depth int) bool {
			if seen[n] {
				t.Fatalf("iteration %d: node %q reachable twice", i, n.Name)
			}
			seen[n] = true
			if depth > 0 && n.Prunable() && len(n.Children) == 0 {
				t.Fatalf("iteration %d: empty %s %q survived pruning", i, n.Kind, n.Name)
			}
			if n.Kind == KindUncategorized {
				sinks++
			}
			return true
		})
		if sinks > 1 {
			t.Fatalf("iteration %d: %d Uncategorized nodes", i, sinks)
		}

		valid := 0
		for _, s := range sols {
			if s.Has(records.FieldSolutionName) {
				valid++
			}
		}
		leaves := 0
		for _, l := range Leaves(root) {
			if l.Kind == KindSolution {
				leaves++
			}
		}
		if leaves != valid {
			t.Fatalf("iteration %d: %d solution leaves, want %d", i, leaves, valid)
		}
	}
}

func randomRecords(rng *rand.Rand, n int) (cats, subs, sols []records.Row) {
	name := func(prefix string, k int) string { return fmt.Sprintf("%s%d", prefix, rng.Intn(k+1)) }
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%d", i)
		if rng.Intn(10) == 0 {
			id = ""
		}
		cats = append(cats, cat(id, name("cat", n)))
	}
	for i := 0; i < n*2; i++ {
		parents := fmt.Sprintf("['%s', '%s']", name("cat", n), name("cat", n))
		if rng.Intn(8) == 0 {
			parents = "[broken"
		}
		subs = append(subs, sub(fmt.Sprintf("s%d", i), name("sub", n*2), parents))
	}
	for i := 0; i < n*4; i++ {
		solName := fmt.Sprintf("sol%d", i)
		if rng.Intn(12) == 0 {
			solName = ""
		}
		sols = append(sols, sol(solName, name("sub", n*3), name("cat", n*2)))
	}
	return cats, subs, sols
}
