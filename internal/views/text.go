package views

import "github.com/rivo/uniseg"

// Truncate shortens s to at most width terminal cells, marking the cut with
// an ellipsis. Grapheme clusters are never split.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var out []byte
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		out = append(out, g.Bytes()...)
		used += w
	}
	return string(out) + "…"
}
