package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
)

// Converter rasterizes or re-encodes SVG documents through an external
// librsvg binary.
type Converter struct {
	// Binary is the rsvg-convert executable, looked up on PATH.
	Binary string
}

// DefaultConverter is used by [ToPDF] and [ToPNG].
var DefaultConverter = Converter{Binary: "rsvg-convert"}

// ToPDF converts an SVG document to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return DefaultConverter.Convert(svg, "pdf", 0)
}

// ToPNG converts an SVG document to PNG; scale 2 doubles the resolution.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return DefaultConverter.Convert(svg, "png", scale)
}

// ConverterAvailable reports whether the default converter can run.
func ConverterAvailable() bool {
	return DefaultConverter.Available()
}

// Available reports whether c.Binary resolves on PATH.
func (c Converter) Available() bool {
	_, err := exec.LookPath(c.Binary)
	return err == nil
}

// Convert pipes svg through the binary to produce format ("pdf" or "png").
// A non-positive scale renders at natural size.
func (c Converter) Convert(svg []byte, format string, scale float64) ([]byte, error) {
	if !c.Available() {
		return nil, errs.New(errs.ErrCodeUnsupported,
			"%s output needs %s from librsvg (brew install librsvg, apt install librsvg2-bin)",
			strings.ToUpper(format), c.Binary)
	}

	args := []string{"--format", format}
	if scale > 0 && scale != 1 {
		args = append(args, "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(c.Binary, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "convert svg to %s: %s",
			format, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
