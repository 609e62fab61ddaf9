package donut

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/YY-OhioU/Passport-Generator/internal/compose"
	"github.com/YY-OhioU/Passport-Generator/internal/storage"
)

// MetadataFile nombre del archivo de salida en formato Donut
const MetadataFile = "metadata.jsonl"

// DefaultKeys campos que se conservan en gt_parse
var DefaultKeys = []string{
	"p_id", "gender", "first_name", "last_name",
	"dob", "date_of_issue", "valid_through", "place_of_birth",
}

// Converter transforma líneas de verdad de terreno al formato de Donut
type Converter struct {
	keys map[string]struct{}
}

// NewConverter crea un conversor con la lista de claves permitidas; sin
// claves usa DefaultKeys.
func NewConverter(keys ...string) *Converter {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	c := &Converter{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		c.keys[k] = struct{}{}
	}
	return c
}

type inputLine struct {
	FileName    string               `json:"file_name"`
	GroundTruth *compose.GroundTruth `json:"ground_truth"`
}

// Line una línea de metadata.jsonl. GroundTruth es JSON codificado como cadena.
type Line struct {
	FileName    string `json:"file_name"`
	GroundTruth string `json:"ground_truth"`
}

// Convert lee líneas de r y escribe una línea convertida por cada una en w.
// Devuelve la cantidad de líneas escritas.
func (c *Converter) Convert(r io.Reader, w io.Writer) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	n := 0
	for lineNo := 1; sc.Scan(); lineNo++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var in inputLine
		if err := json.Unmarshal(raw, &in); err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}

		parse, err := c.gtParse(in.GroundTruth)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if err := enc.Encode(Line{FileName: in.FileName, GroundTruth: parse}); err != nil {
			return n, fmt.Errorf("write line %d: %w", lineNo, err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read ground truth: %w", err)
	}
	return n, nil
}

// gtParse {"gt_parse": {clave: texto}} en el orden original de las claves
func (c *Converter) gtParse(gt *compose.GroundTruth) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"gt_parse":{`)

	if gt != nil {
		first := true
		for _, k := range gt.Keys() {
			if _, ok := c.keys[k]; !ok {
				continue
			}
			v, _ := gt.Get(k)

			key, err := compose.MarshalUnescaped(k)
			if err != nil {
				return "", err
			}
			text, err := compose.MarshalUnescaped(v.Text)
			if err != nil {
				return "", err
			}

			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(text)
		}
	}

	buf.WriteString(`}}`)
	return buf.String(), nil
}

// ConvertFile lee <folder>/ground_truth.jsonl y escribe <folder>/metadata.jsonl
func (c *Converter) ConvertFile(folder string) (int, error) {
	in, err := os.Open(filepath.Join(folder, storage.GroundTruthFile))
	if err != nil {
		return 0, fmt.Errorf("open ground truth: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(folder, MetadataFile))
	if err != nil {
		return 0, fmt.Errorf("create metadata: %w", err)
	}

	n, err := c.Convert(in, out)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close metadata: %w", cerr)
	}
	return n, err
}
