package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Properties is a feature's attribute mapping. Unlike a plain map it remembers
// the order in which keys appeared in the source document, which drives the
// enumeration order of the year domain.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties builds a Properties from alternating key/value arguments,
// e.g. NewProperties("State", "AL", "2019", 3). It panics on an odd argument
// count or a non-string key, so it is intended for fixtures and literals.
func NewProperties(kv ...any) Properties {
	if len(kv)%2 != 0 {
		panic("domain.NewProperties: odd number of arguments")
	}
	var p Properties
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("domain.NewProperties: key %v is not a string", kv[i]))
		}
		p.Set(key, kv[i+1])
	}
	return p
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position and takes the new value.
func (p *Properties) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the raw value stored under key.
func (p Properties) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the attribute keys in document order.
func (p Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len reports the number of attributes.
func (p Properties) Len() int { return len(p.keys) }

// UnmarshalJSON decodes a JSON object while preserving key order. Numbers are
// kept as json.Number so integer counts survive without float rounding.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	if tok == nil {
		*p = Properties{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("decode properties: expected a JSON object")
	}

	var out Properties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode properties: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode properties: unexpected key token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode properties: value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}

	*p = out
	return nil
}

// MarshalJSON encodes the attributes as a JSON object in key order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, fmt.Errorf("encode property %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Geometry is a GeoJSON geometry. Coordinates stay raw until a point is
// resolved from them (see Locator).
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// Feature is one region of the dataset, normally a U.S. state.
type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   *Geometry  `json:"geometry"`
}

// State returns the feature's "State" attribute, or "" when absent.
func (f Feature) State() string {
	v, ok := f.Properties.Get("State")
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// FeatureCollection is the loaded dataset. It is read-only after load.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
