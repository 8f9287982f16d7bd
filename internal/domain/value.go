package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NumericValue returns the numeric value of the attribute stored under key.
// It reports false when the attribute is missing or cannot be read as a
// finite number.
func NumericValue(p Properties, key string) (float64, bool) {
	raw, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	return toNumber(raw)
}

func toNumber(raw any) (float64, bool) {
	var v float64
	switch x := raw.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return 0, false
		}
		v = f
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DisplayValue formats an attribute for popup text. Missing attributes read
// "undefined" and JSON nulls read "null", the way the browser page prints them.
func DisplayValue(p Properties, key string) string {
	raw, ok := p.Get(key)
	if !ok {
		return "undefined"
	}
	switch x := raw.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "undefined"
		}
		return string(b)
	}
}

// ParseIntegerInput reads the text of a numeric input box the way a browser's
// parseInt does: optional leading whitespace, an optional sign, then the
// longest run of decimal digits. Text without such a prefix yields NaN, which
// makes every range comparison against it false.
func ParseIntegerInput(text string) float64 {
	s := strings.TrimLeft(text, " \t\n\r\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
