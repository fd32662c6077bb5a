// Package output renders a finished pc presentation as plain text, as GAP
// code or as JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/nilq/pc"
	"github.com/hupe1980/nilq/vector"
)

// Format selects a renderer.
type Format string

const (
	Plain Format = "plain"
	GAP   Format = "gap"
	JSON  Format = "json"
)

// ParseFormat accepts "plain", "gap" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Plain, GAP, JSON:
		return f, nil
	case "":
		return Plain, nil
	}
	return "", fmt.Errorf("output: unknown format %q", s)
}

// Extension returns the conventional file extension.
func (f Format) Extension() string {
	switch f {
	case GAP:
		return ".g"
	case JSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Write renders p in format f.
func Write[T any](w io.Writer, p *pc.Presentation[T], f Format) error {
	switch f {
	case Plain, "":
		return WritePlain(w, p)
	case GAP:
		return WriteGAP(w, p)
	case JSON:
		return WriteJSON(w, p)
	}
	return fmt.Errorf("output: unknown format %q", f)
}

func genName(g int) string { return fmt.Sprintf("g%d", g) }

// word renders v in the notation of the signature: a linear combination for
// Lie rings, a normal word for groups. The trivial element is "0" or "1".
func word[T any](p *pc.Presentation[T], v vector.Sparse[T], name func(int) string) string {
	if p.Signature != pc.Group {
		return vector.Format(p.Ring, v, name)
	}
	if len(v) == 0 {
		return "1"
	}
	parts := make([]string, len(v))
	for k, x := range v {
		parts[k] = name(x.Gen)
		if c := p.Ring.String(x.Coef); c != "1" {
			parts[k] += "^" + c
		}
	}
	return strings.Join(parts, "*")
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
