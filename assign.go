package formbody

import (
	"strconv"
	"strings"
)

// Field path parsing and assignment.
//
// A raw field name addresses a slot in the result tree: segments are
// separated by ".", and any segment may carry a trailing "[]" (append to the
// list at that key) or "[N]" (explicit list index). Examples:
//
//	"user.name"      -> {"user": {"name": v}}
//	"tags[]"         -> {"tags": [v, ...]}       appended in decode order
//	"items[2].sku"   -> {"items": [nil, nil, {"sku": v}]}
//
// Malformed bracket text degrades to a literal key; parsing never fails.

const segmentAppend = -1

// maxSegmentIndex bounds explicit list indices. A field name is client
// input; an index past this is treated as a literal key rather than an
// instruction to allocate that many slots.
const maxSegmentIndex = 1 << 20

type segment struct {
	key     string
	indexed bool
	index   int // segmentAppend for "[]"
}

// parseFieldPath splits a raw field name into path segments.
func parseFieldPath(name string) []segment {
	parts := strings.Split(name, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		segs = append(segs, parseSegment(p))
	}
	return segs
}

func parseSegment(p string) segment {
	if !strings.HasSuffix(p, "]") {
		return segment{key: p}
	}
	open := strings.LastIndexByte(p, '[')
	if open < 0 {
		return segment{key: p}
	}
	inner := p[open+1 : len(p)-1]
	key := p[:open]
	// a second bracket in the key part is not index syntax
	if strings.ContainsAny(key, "[]") {
		return segment{key: p}
	}
	if inner == "" {
		return segment{key: key, indexed: true, index: segmentAppend}
	}
	for _, r := range inner {
		if r < '0' || r > '9' {
			return segment{key: p}
		}
	}
	idx, err := strconv.Atoi(inner)
	if err != nil || idx > maxSegmentIndex {
		return segment{key: p}
	}
	return segment{key: key, indexed: true, index: idx}
}

// Assign writes value into tree at the slot addressed by name, creating
// intermediate containers as needed, and returns the same tree.
//
// Arrival order across fields and files is not guaranteed to match source
// order, so "[]" appends at the position the field was decoded, not any
// external ordering. An explicit index grows the list with nil slots and
// overwrites an occupied slot (last write wins). Assigning through a path
// that collides with an existing scalar re-shapes that slot into the needed
// container, discarding the previous value (last shape wins).
func Assign(tree Values, name string, value any) Values {
	segs := parseFieldPath(name)
	if len(segs) == 0 {
		return tree
	}
	assignInto(map[string]any(tree), segs, value)
	return tree
}

func assignInto(obj map[string]any, segs []segment, value any) {
	seg := segs[0]
	rest := segs[1:]

	if !seg.indexed {
		if len(rest) == 0 {
			obj[seg.key] = value
			return
		}
		child, ok := obj[seg.key].(map[string]any)
		if !ok {
			child = map[string]any{}
			obj[seg.key] = child
		}
		assignInto(child, rest, value)
		return
	}

	list, _ := obj[seg.key].([]any)

	if seg.index == segmentAppend {
		if len(rest) == 0 {
			obj[seg.key] = append(list, value)
			return
		}
		child := map[string]any{}
		obj[seg.key] = append(list, child)
		assignInto(child, rest, value)
		return
	}

	for len(list) <= seg.index {
		list = append(list, nil)
	}
	obj[seg.key] = list
	if len(rest) == 0 {
		list[seg.index] = value
		return
	}
	child, ok := list[seg.index].(map[string]any)
	if !ok {
		child = map[string]any{}
		list[seg.index] = child
	}
	assignInto(child, rest, value)
}
