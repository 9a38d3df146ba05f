package buckfile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const indent = "    "

func quote(s string) string { return strconv.Quote(s) }

func sortedCopy(items []string) []string {
	out := append([]string(nil), items...)
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderList renders a sorted multiline list at the given nesting depth.
func renderList(items []string, depth int) string {
	if len(items) == 0 {
		return "[]"
	}
	pad := strings.Repeat(indent, depth)
	var b strings.Builder
	b.WriteString("[\n")
	for _, it := range sortedCopy(items) {
		b.WriteString(pad + indent + quote(it) + ",\n")
	}
	b.WriteString(pad + "]")
	return b.String()
}

func renderStrMap(m map[string]string, depth int) string {
	if len(m) == 0 {
		return "{}"
	}
	pad := strings.Repeat(indent, depth)
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range sortedKeys(m) {
		b.WriteString(pad + indent + quote(k) + ": " + quote(m[k]) + ",\n")
	}
	b.WriteString(pad + "}")
	return b.String()
}

func renderListMap(m map[string][]string, depth int) string {
	if len(m) == 0 {
		return "{}"
	}
	pad := strings.Repeat(indent, depth)
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range sortedKeys(m) {
		b.WriteString(pad + indent + quote(k) + ": " + renderList(m[k], depth+1) + ",\n")
	}
	b.WriteString(pad + "}")
	return b.String()
}

func renderNestedMap(m map[string]map[string]string, depth int) string {
	if len(m) == 0 {
		return "{}"
	}
	pad := strings.Repeat(indent, depth)
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range sortedKeys(m) {
		b.WriteString(pad + indent + quote(k) + ": " + renderStrMap(m[k], depth+1) + ",\n")
	}
	b.WriteString(pad + "}")
	return b.String()
}

func renderGlob(include, exclude []string) string {
	if len(exclude) == 0 {
		return "glob(" + renderList(include, 1) + ")"
	}
	return fmt.Sprintf("glob(include = %s, exclude = %s)",
		renderList(include, 1), renderList(exclude, 1))
}

// attrs accumulates rendered attribute lines for one rule call.
type attrs struct {
	lines []string
}

func newAttrs() *attrs { return &attrs{} }

func (a *attrs) raw(name, value string) {
	a.lines = append(a.lines, fmt.Sprintf("%s%s = %s,\n", indent, name, value))
}

func (a *attrs) str(name, value string) { a.raw(name, quote(value)) }

func (a *attrs) list(name string, items []string) { a.raw(name, renderList(items, 1)) }

func (a *attrs) strMap(name string, m map[string]string) {
	a.raw(name, renderStrMap(m, 1))
}
func (a *attrs) listMap(name string, m map[string][]string) {
	a.raw(name, renderListMap(m, 1))
}

func (a *attrs) nestedMap(name string, m map[string]map[string]string) {
	a.raw(name, renderNestedMap(m, 1))
}

func (a *attrs) call(fn string) string {
	var b strings.Builder
	b.WriteString(fn + "(\n")
	for _, l := range a.lines {
		b.WriteString(l)
	}
	b.WriteString(")\n")
	return b.String()
}
