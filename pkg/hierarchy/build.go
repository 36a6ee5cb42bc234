package hierarchy

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ohler55/ojg/oj"

	"github.com/matzehuels/solutionmap/pkg/records"
)

// Report summarizes what construction did with dirty input.
type Report struct {
	SkippedCategories    int      `json:"skipped_categories"`
	SkippedSubcategories int      `json:"skipped_subcategories"`
	SkippedSolutions     int      `json:"skipped_solutions"`
	MalformedParents     int      `json:"malformed_parents"`
	OrphanSubcategories  int      `json:"orphan_subcategories"`
	Uncategorized        int      `json:"uncategorized"`
	Pruned               int      `json:"pruned"`
	DuplicateIDs         int      `json:"duplicate_ids"`
	DuplicateNames       []string `json:"duplicate_names,omitempty"`
}

// Option configures [Build].
type Option func(*builder)

// WithLogger routes construction diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Build constructs the hierarchy. See the package documentation for the
// resolution and pruning rules.
func Build(categories, subcategories, solutions []records.Row, opts ...Option) *Node {
	root, _ := BuildReport(categories, subcategories, solutions, opts...)
	return root
}

// BuildReport is [Build] that also returns the construction diagnostics.
func BuildReport(categories, subcategories, solutions []records.Row, opts ...Option) (*Node, Report) {
	b := &builder{
		logger: log.New(io.Discard),
		root:   &Node{Name: RootName, Kind: KindRoot, Children: []*Node{}},
	}
	for _, opt := range opts {
		opt(b)
	}

	b.addCategories(categories)
	b.addSubcategories(subcategories)
	b.addSolutions(solutions)
	b.prune(b.root)

	b.report.DuplicateNames = append(b.categories.duplicateNames(), b.subcategories.duplicateNames()...)
	for _, name := range b.report.DuplicateNames {
		b.logger.Warn("ambiguous name, first match wins", "name", name)
	}
	return b.root, b.report
}

type builder struct {
	logger        *log.Logger
	root          *Node
	categories    index
	subcategories index
	uncategorized *Node
	report        Report
}

func (b *builder) addCategories(rows []records.Row) {
	for _, row := range rows {
		id, name := row.String(records.FieldID), row.First(records.FieldCategoryName, records.FieldName)
		if id == "" || name == "" {
			b.report.SkippedCategories++
			continue
		}
		n := &Node{Name: name, ID: id, Kind: KindCategory, Children: []*Node{}}
		if b.categories.put(n) {
			b.report.DuplicateIDs++
		}
		b.root.Children = append(b.root.Children, n)
	}
}

func (b *builder) addSubcategories(rows []records.Row) {
	for _, row := range rows {
		id, name := row.String(records.FieldID), row.First(records.FieldSubcategoryName, records.FieldName)
		if id == "" || name == "" {
			b.report.SkippedSubcategories++
			continue
		}
		n := &Node{Name: name, ID: id, Kind: KindSubcategory, Children: []*Node{}}

		parent := b.root
		if row.Has(records.FieldParentCategory) {
			raw := row[records.FieldParentCategory]
			names, err := ParseParents(raw)
			if err != nil {
				b.report.MalformedParents++
				b.logger.Warn("malformed parent category list", "subcategory", name, "value", raw, "err", err)
			} else if c := b.categories.firstNamedIn(names); c != nil {
				parent = c
			}
		}
		if parent == b.root {
			b.report.OrphanSubcategories++
			b.logger.Debug("subcategory attached to root", "subcategory", name)
		}

		if b.subcategories.put(n) {
			b.report.DuplicateIDs++
		}
		parent.Children = append(parent.Children, n)
	}
}

func (b *builder) addSolutions(rows []records.Row) {
	for _, row := range rows {
		name := row.String(records.FieldSolutionName)
		if name == "" {
			b.report.SkippedSolutions++
			continue
		}
		n := &Node{Name: name, ID: row.String(records.FieldID), Kind: KindSolution, Value: 1}

		parent := b.subcategories.firstNamed(row.String(records.FieldSolutionSubcategory))
		if parent == nil {
			parent = b.categories.firstNamed(row.String(records.FieldSolutionCategory))
		}
		if parent == nil {
			parent = b.sink()
			b.report.Uncategorized++
			b.logger.Debug("solution uncategorized", "solution", name)
		}
		parent.Children = append(parent.Children, n)
	}
}

// sink returns the Uncategorized node, creating it under the root once.
func (b *builder) sink() *Node {
	if b.uncategorized == nil {
		b.uncategorized = &Node{Name: UncategorizedName, Kind: KindUncategorized, Children: []*Node{}}
		b.root.Children = append(b.root.Children, b.uncategorized)
	}
	return b.uncategorized
}

// prune removes empty grouping nodes below n, children first.
func (b *builder) prune(n *Node) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		b.prune(c)
		if c.Prunable() && len(c.Children) == 0 {
			b.report.Pruned++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	if n.Children != nil {
		n.Children = kept
	}
}

// ParseParents decodes a serialized parent category list such as
// "['Water', 'Heat']". Single quotes are normalized to double quotes before
// parsing. A decoded bare string is a one-element list. Already decoded
// lists are accepted as is.
func ParseParents(raw any) ([]string, error) {
	v := raw
	if s, ok := raw.(string); ok {
		parsed, err := oj.ParseString(strings.ReplaceAll(s, "'", `"`))
		if err != nil {
			return nil, err
		}
		v = parsed
	}
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return t, nil
	default:
		return nil, errNotAList
	}
}

var errNotAList = errors.New("parent category value is not a list")

// index keeps nodes by id in first-insertion order. Re-inserting an id
// replaces the node but keeps the original position.
type index struct {
	order []string
	byID  map[string]*Node
}

func (x *index) put(n *Node) (replaced bool) {
	if x.byID == nil {
		x.byID = make(map[string]*Node)
	}
	if _, ok := x.byID[n.ID]; ok {
		replaced = true
	} else {
		x.order = append(x.order, n.ID)
	}
	x.byID[n.ID] = n
	return replaced
}

func (x *index) firstNamed(name string) *Node {
	if name == "" {
		return nil
	}
	for _, id := range x.order {
		if n := x.byID[id]; n.Name == name {
			return n
		}
	}
	return nil
}

func (x *index) firstNamedIn(names []string) *Node {
	for _, id := range x.order {
		n := x.byID[id]
		for _, name := range names {
			if n.Name == name {
				return n
			}
		}
	}
	return nil
}

func (x *index) duplicateNames() []string {
	seen := make(map[string]int)
	var dups []string
	for _, id := range x.order {
		name := x.byID[id].Name
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}
