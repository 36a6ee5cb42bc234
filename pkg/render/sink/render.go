package sink

import (
	"bytes"
	"strings"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/render"
)

// Format names an output document type.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatJSON, FormatPNG, FormatPDF}

// ParseFormat validates a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (want svg, json, png or pdf)", s)
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Options configures [Render].
type Options struct {
	SVG []SVGOption
	// Scale is the PNG resolution factor. Defaults to 2.
	Scale float64
}

// JSON encodes a frame with its view name.
func JSON(view frame.View, f any) ([]byte, error) {
	var buf bytes.Buffer
	if err := frame.Write(&buf, view, f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode %s frame", view)
	}
	return buf.Bytes(), nil
}

// SVG draws a frame of any view.
func SVG(f any, opts ...SVGOption) ([]byte, error) {
	switch f := f.(type) {
	case frame.Tree:
		return Tree(f, opts...), nil
	case frame.Icicle:
		return Icicle(f, opts...), nil
	case frame.Sunburst:
		return Sunburst(f, opts...), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidView, "cannot draw frame of type %T", f)
}

// Render produces a frame in the given format.
func Render(view frame.View, f any, format Format, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return JSON(view, f)
	}
	doc, err := SVG(f, opts.SVG...)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return doc, nil
	case FormatPDF:
		return render.ToPDF(doc)
	case FormatPNG:
		scale := opts.Scale
		if scale <= 0 {
			scale = 2
		}
		return render.ToPNG(doc, scale)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
}
