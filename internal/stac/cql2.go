package stac

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FilterLang names a CQL2 dialect.
type FilterLang string

const (
	FilterLangCQL2Text FilterLang = "cql2-text"
	FilterLangCQL2JSON FilterLang = "cql2-json"
)

// Cql2Expr is a parse/pass-through representation of a CQL2 filter: either
// the JSON dialect (a nested object tree) or the text dialect (an opaque
// string), with no evaluator. Conversion runs one way only: Text renders a
// subset of CQL2-JSON (and/or/not, binary comparisons, "in") as CQL2-Text
// and fails with ErrUnimplemented for anything else; CQL2-Text is never
// parsed into JSON (see JSON).
type Cql2Expr struct {
	json json.RawMessage
	text string
}

// NewCql2JSON wraps a decoded CQL2-JSON expression tree.
func NewCql2JSON(raw json.RawMessage) Cql2Expr { return Cql2Expr{json: raw} }

// NewCql2Text wraps a CQL2-Text expression string.
func NewCql2Text(s string) Cql2Expr { return Cql2Expr{text: s} }

// IsJSON reports whether this expression was constructed from cql2-json.
func (c Cql2Expr) IsJSON() bool { return c.json != nil }

// JSON returns the cql2-json representation, converting from text is not
// supported (text->json is not required by any SPEC_FULL.md operation) and
// returns the original text as a raw JSON string if that's all that exists.
func (c Cql2Expr) JSON() json.RawMessage {
	if c.json != nil {
		return c.json
	}
	raw, _ := json.Marshal(c.text)
	return raw
}

// Text returns the cql2-text representation, converting from JSON via
// jsonToText when necessary.
func (c Cql2Expr) Text() (string, error) {
	if c.text != "" {
		return c.text, nil
	}
	if c.json == nil {
		return "", nil
	}
	return jsonToText(c.json)
}

// jsonToText converts a common subset of CQL2-JSON (and/or/not, binary
// comparisons, "in") into CQL2-Text. Expressions outside this subset fail
// with ErrUnimplemented, matching the Unimplemented error named in spec.md
// §7 for features not yet evaluable locally.
func jsonToText(raw json.RawMessage) (string, error) {
	var node map[string]any
	if err := json.Unmarshal(raw, &node); err != nil {
		return "", err
	}
	return nodeToText(node)
}

func nodeToText(node map[string]any) (string, error) {
	op, _ := node["op"].(string)
	args, _ := node["args"].([]any)
	switch op {
	case "and", "or":
		parts := make([]string, 0, len(args))
		for _, a := range args {
			sub, ok := a.(map[string]any)
			if !ok {
				return "", ErrUnimplemented
			}
			text, err := nodeToText(sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+text+")")
		}
		sep := " AND "
		if op == "or" {
			sep = " OR "
		}
		return strings.Join(parts, sep), nil
	case "not":
		if len(args) != 1 {
			return "", ErrUnimplemented
		}
		sub, ok := args[0].(map[string]any)
		if !ok {
			return "", ErrUnimplemented
		}
		text, err := nodeToText(sub)
		if err != nil {
			return "", err
		}
		return "NOT (" + text + ")", nil
	case "=", "<>", "<", "<=", ">", ">=":
		if len(args) != 2 {
			return "", ErrUnimplemented
		}
		left, err := operandToText(args[0])
		if err != nil {
			return "", err
		}
		right, err := operandToText(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", left, op, right), nil
	case "in":
		if len(args) != 2 {
			return "", ErrUnimplemented
		}
		left, err := operandToText(args[0])
		if err != nil {
			return "", err
		}
		list, ok := args[1].([]any)
		if !ok {
			return "", ErrUnimplemented
		}
		items := make([]string, 0, len(list))
		for _, v := range list {
			t, err := literalToText(v)
			if err != nil {
				return "", err
			}
			items = append(items, t)
		}
		return fmt.Sprintf("%s IN (%s)", left, strings.Join(items, ", ")), nil
	default:
		return "", ErrUnimplemented
	}
}

func operandToText(v any) (string, error) {
	if m, ok := v.(map[string]any); ok {
		if prop, ok := m["property"].(string); ok {
			return prop, nil
		}
		return "", ErrUnimplemented
	}
	return literalToText(v)
}

func literalToText(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case nil:
		return "NULL", nil
	default:
		return "", ErrUnimplemented
	}
}
