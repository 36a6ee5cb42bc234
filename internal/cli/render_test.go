package cli

import (
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty uses default", "", []string{"svg"}},
		{"single", "png", []string{"png"}},
		{"multiple", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and blanks", " svg, ,json ", []string{"svg", "json"}},
		{"case folded", "SVG,Icicle", []string{"svg", "icicle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.input, "svg")
			if len(got) != len(tt.want) {
				t.Fatalf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("splitList(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"", "solutionmap"},
		{"out/map.svg", "out/map"},
		{"out/map.PNG", "out/map"},
		{"out/map", "out/map"},
		{"out/map.v2", "out/map.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		opts   renderOpts
		view   string
		format string
		want   string
	}{
		{"single uses output", renderOpts{output: "x.svg", views: []string{"tree"}, formats: []string{"svg"}}, "tree", "svg", "x.svg"},
		{"single without output", renderOpts{views: []string{"tree"}, formats: []string{"svg"}}, "tree", "svg", "solutionmap.svg"},
		{"several formats", renderOpts{output: "x.svg", views: []string{"icicle"}, formats: []string{"svg", "png"}}, "icicle", "png", "x.png"},
		{"several views", renderOpts{output: "x", views: []string{"tree", "sunburst"}, formats: []string{"svg"}}, "sunburst", "svg", "x_sunburst.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(&tt.opts, tt.view, tt.format); got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}
