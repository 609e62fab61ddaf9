package compose

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/YY-OhioU/Passport-Generator/internal/glyph"
)

// FieldTruth texto dibujado y su caja. BB nil significa campo vacío.
type FieldTruth struct {
	Text string     `json:"text"`
	BB   *glyph.Box `json:"bb"`
}

// GroundTruth verdad de terreno de una muestra en el orden de la plantilla
type GroundTruth struct {
	keys   []string
	values map[string]FieldTruth
}

// NewGroundTruth crea una verdad de terreno vacía
func NewGroundTruth() *GroundTruth {
	return &GroundTruth{values: make(map[string]FieldTruth)}
}

// Set agrega o reemplaza una clave conservando su posición original
func (g *GroundTruth) Set(key string, v FieldTruth) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = v
}

// Get devuelve el valor de una clave
func (g *GroundTruth) Get(key string) (FieldTruth, bool) {
	v, ok := g.values[key]
	return v, ok
}

func (g *GroundTruth) Len() int { return len(g.keys) }

// Keys claves en orden de inserción
func (g *GroundTruth) Keys() []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	return keys
}

// MapBoxes aplica fn a cada caja no nula
func (g *GroundTruth) MapBoxes(fn func(glyph.Box) glyph.Box) {
	for _, k := range g.keys {
		v := g.values[k]
		if v.BB == nil {
			continue
		}
		b := fn(*v.BB)
		v.BB = &b
		g.values[k] = v
	}
}

// MarshalJSON objeto JSON con las claves en orden
func (g *GroundTruth) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := MarshalUnescaped(k)
		if err != nil {
			return nil, err
		}
		val, err := MarshalUnescaped(g.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalUnescaped como json.Marshal pero sin escapar '<', que abunda en la MRZ
func MarshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON conserva el orden de las claves del documento
func (g *GroundTruth) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ground truth must be an object")
	}

	out := NewGroundTruth()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var v FieldTruth
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*g = *out
	return nil
}
