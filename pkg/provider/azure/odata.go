// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// bindFilter replaces @name placeholders in an OData filter with literals from params.
// Placeholders inside quoted string literals are left alone.
func bindFilter(filter string, params map[string]any) (string, error) {
	var b strings.Builder
	inString := false

	for i := 0; i < len(filter); i++ {
		c := filter[i]
		switch {
		case c == '\'':
			// A doubled quote inside a literal toggles twice and stays in the literal.
			inString = !inString
			b.WriteByte(c)
		case c == '@' && !inString:
			j := i + 1
			for j < len(filter) && isIdentByte(filter[j], j == i+1) {
				j++
			}
			if j == i+1 {
				b.WriteByte(c)
				continue
			}
			name := filter[i+1 : j]
			v, ok := params[name]
			if !ok {
				return "", fmt.Errorf("unbound query parameter @%s", name)
			}
			lit, err := odataLiteral(v)
			if err != nil {
				return "", fmt.Errorf("query parameter @%s: %w", name, err)
			}
			b.WriteString(lit)
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}

	if inString {
		return "", fmt.Errorf("unterminated string literal in filter %q", filter)
	}
	return b.String(), nil
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

// odataLiteral formats v as an OData literal understood by Table storage.
func odataLiteral(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'", nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10) + "L", nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case time.Time:
		return "datetime'" + x.UTC().Format(time.RFC3339Nano) + "'", nil
	case nil:
		return "", fmt.Errorf("null values cannot be bound")
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}
