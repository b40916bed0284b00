package ledger

import (
	"bytes"
	"sort"
)

type FilterFunc[T Directive] func(T) bool

// Sort orders directives canonically: date ascending, ties broken by the
// insertion sequence recorded in each directive's metadata. The sort is
// stable so equal entries keep their relative order.
func Sort(directives []Directive) {
	sort.SliceStable(directives, func(i, j int) bool {
		di, dj := directives[i].Date(), directives[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return directives[i].Sequence() < directives[j].Sequence()
	})
}

// Render writes directives as plain text, one blank line between entries.
func Render[T Directive](directives []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	for _, d := range directives {
		if filter == nil || filter(d) {
			buf.WriteString(d.String())
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}
