// Package luatable evaluates Lua table documents (rocks manifests and
// rockspecs) and extracts named global bindings as plain Go values.
//
// Every call to [Parse] builds its own interpreter and closes it before
// returning; no interpreter state is shared between calls. Only the base,
// table, string and math libraries are opened, so documents cannot touch
// the filesystem or spawn processes.
//
// Conversion rules:
//   - Lua strings, numbers and booleans become string, float64 and bool.
//   - Tables whose keys are exactly 1..n become []any in index order.
//   - Other tables become map[string]any keyed by the key's string form.
//   - nil, functions, userdata and threads become nil.
package luatable

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/matzehuels/rocks-admin/pkg/errors"
)

// maxDepth bounds table nesting so self-referencing tables terminate.
const maxDepth = 64

// Document holds the extracted bindings of one evaluated document.
// Missing bindings are absent from the map.
type Document map[string]any

// Table returns binding name as a map. A Lua array is converted to a map
// keyed "1".."n". Missing or scalar bindings yield nil.
func (d Document) Table(name string) map[string]any {
	return AsMap(d[name])
}

// String returns binding name as a string, or "" when missing or not a string.
func (d Document) String(name string) string {
	s, _ := d[name].(string)
	return s
}

// List returns binding name as an ordered list. Maps with numeric keys are
// ordered by key. Missing or scalar bindings yield nil.
func (d Document) List(name string) []any {
	return AsList(d[name])
}

var libs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// Parse evaluates text as a Lua chunk and returns the named global bindings.
// Evaluation honours ctx cancellation. A syntax or runtime error is returned
// as a PARSE_ERROR.
func Parse(ctx context.Context, text string, bindings ...string) (Document, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open lua library %s", lib.name)
		}
	}

	if err := L.DoString(text); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "evaluate table document")
	}

	doc := make(Document, len(bindings))
	for _, name := range bindings {
		lv := L.GetGlobal(name)
		if lv == lua.LNil {
			continue
		}
		v, err := convert(lv, 0)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "convert binding %q", name)
		}
		doc[name] = v
	}
	return doc, nil
}

func convert(lv lua.LValue, depth int) (any, error) {
	switch v := lv.(type) {
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		return float64(v), nil
	case lua.LBool:
		return bool(v), nil
	case *lua.LTable:
		if depth >= maxDepth {
			return nil, fmt.Errorf("table nesting exceeds %d levels", maxDepth)
		}
		return convertTable(v, depth+1)
	default:
		return nil, nil
	}
}

func convertTable(tb *lua.LTable, depth int) (any, error) {
	var (
		keys   []lua.LValue
		values []lua.LValue
	)
	tb.ForEach(func(k, v lua.LValue) {
		keys = append(keys, k)
		values = append(values, v)
	})

	if idx, ok := arrayIndexes(keys); ok {
		list := make([]any, len(keys))
		for i, v := range values {
			conv, err := convert(v, depth)
			if err != nil {
				return nil, err
			}
			list[idx[i]-1] = conv
		}
		return list, nil
	}

	m := make(map[string]any, len(keys))
	for i, k := range keys {
		conv, err := convert(values[i], depth)
		if err != nil {
			return nil, err
		}
		m[k.String()] = conv
	}
	return m, nil
}

// arrayIndexes reports whether keys are exactly the integers 1..len(keys)
// and returns them as ints.
func arrayIndexes(keys []lua.LValue) ([]int, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	seen := make([]bool, len(keys)+1)
	idx := make([]int, len(keys))
	for i, k := range keys {
		n, ok := k.(lua.LNumber)
		if !ok {
			return nil, false
		}
		f := float64(n)
		j := int(f)
		if float64(j) != f || j < 1 || j > len(keys) || seen[j] {
			return nil, false
		}
		seen[j] = true
		idx[i] = j
	}
	return idx, true
}

// AsMap converts a converted value into a map. Lists are keyed "1".."n".
func AsMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		m := make(map[string]any, len(t))
		for i, e := range t {
			m[strconv.Itoa(i+1)] = e
		}
		return m
	default:
		return nil
	}
}

// AsList converts a converted value into an ordered list. Maps keep only
// their numeric keys, in ascending order.
func AsList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		type entry struct {
			n float64
			v any
		}
		var entries []entry
		for k, e := range t {
			if n, err := strconv.ParseFloat(k, 64); err == nil {
				entries = append(entries, entry{n, e})
			}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
		list := make([]any, len(entries))
		for i, e := range entries {
			list[i] = e.v
		}
		return list
	default:
		return nil
	}
}
