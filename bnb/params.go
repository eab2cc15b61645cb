// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bnb

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParamType is the value type of a solver parameter.
type ParamType uint8

const (
	ParamBool ParamType = iota
	ParamInt
	ParamLong
	ParamReal
	ParamChar
	ParamString
)

func (t ParamType) String() string {
	switch t {
	case ParamBool:
		return "bool"
	case ParamInt:
		return "int"
	case ParamLong:
		return "long"
	case ParamReal:
		return "real"
	case ParamChar:
		return "char"
	case ParamString:
		return "string"
	}
	return fmt.Sprintf("paramtype(%d)", uint8(t))
}

type paramDef struct {
	typ     ParamType
	def     any
	allowed string // ParamChar only
	min     float64
	max     float64
	desc    string
}

var paramDefs = map[string]paramDef{
	"branching/preferbinary": {
		typ: ParamBool, def: false,
		desc: "prefer binary variables in default branching",
	},
	"lp/iterlim": {
		typ: ParamInt, def: -1, min: -1, max: 0,
		desc: "simplex iteration limit per node LP: 0 stops before the first pivot, -1 is unlimited",
	},
	"lp/solvefreq": {
		typ: ParamInt, def: 1, min: -1, max: 1,
		desc: "solve node LPs (1) or branch on pseudo solutions (-1)",
	},
	"limits/nodes": {
		typ: ParamLong, def: int64(-1), min: -1, max: math.MaxInt64,
		desc: "maximal number of processed nodes (-1: unlimited)",
	},
	"limits/time": {
		typ: ParamReal, def: 1e20, min: 0, max: 1e20,
		desc: "maximal wall time in seconds",
	},
	"limits/gap": {
		typ: ParamReal, def: 0.0, min: 0, max: math.MaxFloat64,
		desc: "stop once the relative primal-dual gap falls below this value",
	},
	"nodeselection/strategy": {
		typ: ParamChar, def: byte('b'), allowed: "bd",
		desc: "node selection: best bound (b) or depth first (d)",
	},
	"display/tag": {
		typ: ParamString, def: "",
		desc: "tag attached to every log record of the model",
	},
}

// ParamNames returns the names of all parameters, sorted.
func ParamNames() []string {
	names := make([]string, 0, len(paramDefs))
	for name := range paramDefs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParamTypeOf returns the type of the named parameter.
func ParamTypeOf(name string) (ParamType, error) {
	def, ok := paramDefs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return def.typ, nil
}

// ParamDescription returns the one-line description of the named parameter.
func ParamDescription(name string) (string, error) {
	def, ok := paramDefs[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return def.desc, nil
}

// paramTable holds the current value of every parameter.
type paramTable map[string]any

func defaultParams() paramTable {
	t := make(paramTable, len(paramDefs))
	for name, def := range paramDefs {
		t[name] = def.def
	}
	return t
}

func (t paramTable) clone() paramTable {
	c := make(paramTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

func (t paramTable) getBool(name string) bool { return t[name].(bool) }
func (t paramTable) getInt(name string) int { return t[name].(int) }
func (t paramTable) getLong(name string) int64 { return t[name].(int64) }
func (t paramTable) getReal(name string) float64 { return t[name].(float64) }
func (t paramTable) getChar(name string) byte { return t[name].(byte) }
func (t paramTable) getString(name string) string { return t[name].(string) }

// set converts v to the parameter's type and stores it.
func (t paramTable) set(name string, v any) error {
	def, ok := paramDefs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	conv, err := convertParam(def, v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	t[name] = conv
	return nil
}

func convertParam(def paramDef, v any) (any, error) {
	mismatch := fmt.Errorf("%w: want %s, got %T", ErrParamType, def.typ, v)
	switch def.typ {
	case ParamBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch
		}
		return b, nil
	case ParamInt, ParamLong:
		var n int64
		switch x := v.(type) {
		case int:
			n = int64(x)
		case int32:
			n = int64(x)
		case int64:
			n = x
		default:
			return nil, mismatch
		}
		if float64(n) < def.min || float64(n) > def.max {
			return nil, fmt.Errorf("%w: %d", ErrParamValue, n)
		}
		if def.typ == ParamInt {
			return int(n), nil
		}
		return n, nil
	case ParamReal:
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		case int:
			f = float64(x)
		case int64:
			f = float64(x)
		default:
			return nil, mismatch
		}
		if math.IsNaN(f) || f < def.min || f > def.max {
			return nil, fmt.Errorf("%w: %g", ErrParamValue, f)
		}
		return f, nil
	case ParamChar:
		var c byte
		switch x := v.(type) {
		case byte:
			c = x
		case rune:
			if x > math.MaxUint8 {
				return nil, fmt.Errorf("%w: %q", ErrParamValue, x)
			}
			c = byte(x)
		case string:
			if len(x) != 1 {
				return nil, mismatch
			}
			c = x[0]
		default:
			return nil, mismatch
		}
		if def.allowed != "" && strings.IndexByte(def.allowed, c) < 0 {
			return nil, fmt.Errorf("%w: %q not in %q", ErrParamValue, c, def.allowed)
		}
		return c, nil
	case ParamString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch
		}
		return s, nil
	}
	return nil, mismatch
}

// ParamSet is a flat set of parameter assignments keyed by parameter name.
type ParamSet map[string]any

// ReadParams decodes a YAML parameter set.
//
// Nested mappings are joined with "/", so
//
//	limits:
//	  time: 60
//
// and
//
//	limits/time: 60
//
// are equivalent.
func ReadParams(r io.Reader) (ParamSet, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return ParamSet{}, nil
		}
		return nil, fmt.Errorf("bnb: read params: %w", err)
	}
	ps := ParamSet{}
	flattenParams("", doc, ps)
	return ps, nil
}

func flattenParams(prefix string, doc map[string]any, out ParamSet) {
	for k, v := range doc {
		name := k
		if prefix != "" {
			name = prefix + "/" + k
		}
		if sub, ok := v.(map[string]any); ok {
			flattenParams(name, sub, out)
			continue
		}
		out[name] = v
	}
}
