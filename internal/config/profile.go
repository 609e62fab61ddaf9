package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// profileDoc perfil YAML con las constantes de render y aumento.
// Los campos ausentes conservan el valor cargado desde el entorno.
type profileDoc struct {
	Render  RenderConfig  `yaml:"render"`
	Augment AugmentConfig `yaml:"augment"`
	Synth   SynthConfig   `yaml:"synth"`
}

// ApplyProfileFile sobreescribe render/augment/synth con un perfil YAML
func (c *Config) ApplyProfileFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile %s: %w", path, err)
	}
	return c.ApplyProfile(data)
}

// ApplyProfile aplica un perfil YAML ya leído
func (c *Config) ApplyProfile(data []byte) error {
	doc := profileDoc{
		Render:  c.Render,
		Augment: c.Augment,
		Synth:   c.Synth,
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse profile: %w", err)
	}

	c.Render = doc.Render
	c.Augment = doc.Augment
	c.Synth = doc.Synth
	return nil
}

// ParseColor interpreta colores "#RRGGBB" o "#RRGGBBAA"
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	if len(hex) == 6 {
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
