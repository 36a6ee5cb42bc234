package pipeline

import (
	"context"
	"strconv"

	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/observability"
	"github.com/matzehuels/solutionmap/pkg/render/nodelink"
	"github.com/matzehuels/solutionmap/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, tree *hierarchy.Node, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.IsNodelink() {
		return renderNodelink(ctx, tree, opts)
	}

	v, err := Replay(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	f := v.Frame()
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, name := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := sink.Render(v.Kind(), f, sink.Format(name), sink.Options{Scale: opts.Scale})
		if err != nil {
			return nil, err
		}
		artifacts[name] = data
	}
	return artifacts, nil
}

// Replay builds the view named by opts and replays its clicks. Node
// tokens are sequential so the same clicks always produce the same frame.
func Replay(ctx context.Context, tree *hierarchy.Node, opts Options) (View, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	seq := 0
	v, err := NewView(frame.View(opts.View), tree, ViewParams{
		Config: opts.Config,
		Width:  opts.Width,
		Height: opts.Height,
		Logger: opts.Logger,
		Tokens: func() string {
			seq++
			return "n" + strconv.Itoa(seq)
		},
	})
	if err != nil {
		return nil, err
	}

	// The initial layout animates too.
	v.Settle()
	hooks := observability.Interaction()
	for i, ref := range opts.Clicks {
		outcome, err := v.Click(ref)
		if err != nil {
			return nil, err
		}
		hooks.OnClick(ctx, opts.View, outcome)
		opts.Logger.Debug("replayed click", "ref", ref, "outcome", outcome)
		if i < len(opts.Clicks)-1 {
			v.Settle()
		}
	}
	if !opts.Live {
		v.Settle()
	}
	return v, nil
}

func renderNodelink(ctx context.Context, tree *hierarchy.Node, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, name := range opts.Formats {
		var data []byte
		var err error
		switch sink.Format(name) {
		case sink.FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case sink.FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case sink.FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case sink.FormatJSON:
			data, err = hierarchy.Marshal(tree)
		}
		if err != nil {
			return nil, err
		}
		artifacts[name] = data
	}
	return artifacts, nil
}
