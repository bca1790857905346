package docstore

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// normalize converts an arbitrary Go value into its JSON-decoded form so that
// struct fields, typed ints and times compare the same way stored values do.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return out, nil
}

func normalizeDoc(d Doc) (Doc, error) {
	v, err := normalize(map[string]any(d))
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not an object", ErrBadQuery)
	}
	return Doc(m), nil
}

func normalizeFilter(f Filter) (Filter, error) {
	out := make(Filter, len(f))
	for i, c := range f {
		if c.Field == "" {
			return nil, fmt.Errorf("%w: empty field", ErrBadQuery)
		}
		v, err := normalize(c.Value)
		if err != nil {
			return nil, err
		}
		switch c.Op {
		case OpEq, OpGt, OpGte, OpLt, OpLte:
		case OpIn:
			if _, ok := v.([]any); !ok {
				return nil, fmt.Errorf("%w: in %q needs a list", ErrBadQuery, c.Field)
			}
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", ErrBadQuery, c.Op)
		}
		out[i] = Cond{Field: c.Field, Op: c.Op, Value: v}
	}
	return out, nil
}

// lookup resolves a dotted path inside a document.
func lookup(d Doc, path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// matches reports whether d satisfies every condition of an already
// normalized filter.
func matches(d Doc, f Filter) bool {
	for _, c := range f {
		if !matchCond(d, c) {
			return false
		}
	}
	return true
}

func matchCond(d Doc, c Cond) bool {
	v, ok := lookup(d, c.Field)
	if !ok {
		// A missing field equals null, and nothing else.
		return c.Op == OpEq && c.Value == nil
	}
	// Array fields match when any element does.
	if arr, isArr := v.([]any); isArr {
		if _, wantArr := c.Value.([]any); !wantArr || c.Op == OpIn {
			for _, el := range arr {
				if matchValue(el, c) {
					return true
				}
			}
			return false
		}
	}
	return matchValue(v, c)
}

func matchValue(v any, c Cond) bool {
	switch c.Op {
	case OpEq:
		return equal(v, c.Value)
	case OpIn:
		for _, want := range c.Value.([]any) {
			if equal(v, want) {
				return true
			}
		}
		return false
	}
	n, ok := compare(v, c.Value)
	if !ok {
		return false
	}
	switch c.Op {
	case OpGt:
		return n > 0
	case OpGte:
		return n >= 0
	case OpLt:
		return n < 0
	case OpLte:
		return n <= 0
	}
	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if n, ok := compare(a, b); ok {
		return n == 0
	}
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

// compare orders two values of the same scalar kind. ok is false when the
// kinds differ or are not ordered.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func applyUpdate(d Doc, u Update) error {
	if u.empty() {
		return fmt.Errorf("%w: empty update", ErrBadQuery)
	}
	for field, v := range u.Set {
		if field == IDField {
			return ErrImmutableID
		}
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		if err := setPath(d, field, nv); err != nil {
			return err
		}
	}
	for field, v := range u.AddToSet {
		if field == IDField {
			return ErrImmutableID
		}
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		cur, _ := lookup(d, field)
		var arr []any
		switch existing := cur.(type) {
		case nil:
		case []any:
			arr = existing
		default:
			return fmt.Errorf("%w: %q is not an array", ErrBadQuery, field)
		}
		if !slices.ContainsFunc(arr, func(el any) bool { return equal(el, nv) }) {
			arr = append(arr, nv)
		}
		if err := setPath(d, field, arr); err != nil {
			return err
		}
	}
	return nil
}

func setPath(d Doc, path string, v any) error {
	parts := strings.Split(path, ".")
	m := map[string]any(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part]
		if !ok || next == nil {
			child := map[string]any{}
			m[part] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q is not an object", ErrBadQuery, part)
		}
		m = child
	}
	m[parts[len(parts)-1]] = v
	return nil
}

// sortDocs orders documents by keys; missing values sort first, unordered
// kinds keep their relative order.
func sortDocs(docs []Doc, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(docs, func(a, b Doc) int {
		for _, k := range keys {
			av, aok := lookup(a, k.Field)
			bv, bok := lookup(b, k.Field)
			var n int
			switch {
			case !aok && !bok:
				n = 0
			case !aok:
				n = -1
			case !bok:
				n = 1
			default:
				n, _ = compare(av, bv)
			}
			if k.Desc {
				n = -n
			}
			if n != 0 {
				return n
			}
		}
		return 0
	})
}

func limitDocs(docs []Doc, limit int) []Doc {
	if limit > 0 && len(docs) > limit {
		return docs[:limit]
	}
	return docs
}

// idEq returns the id a filter pins with an equality condition, if any.
func idEq(f Filter) (int, bool) {
	for _, c := range f {
		if c.Field != IDField || c.Op != OpEq {
			continue
		}
		if v, ok := c.Value.(float64); ok && v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
