// Package screener narrows a market snapshot to a thematic candidate list.
package screener

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme is one selectable sector and the name fragments that identify its members.
type Theme struct {
	Sector   string   `yaml:"sector"`
	Keywords []string `yaml:"keywords"`
}

// Themes is the ordered set of selectable sectors.
type Themes struct {
	Themes []Theme `yaml:"themes"`
}

// DefaultThemes returns the built-in sectors.
func DefaultThemes() *Themes {
	return &Themes{Themes: []Theme{
		{Sector: "新能源", Keywords: []string{"光伏", "锂", "能", "宁德", "隆基", "通威", "特变", "阳光"}},
		{Sector: "半导体", Keywords: []string{"芯", "半导体", "微", "韦尔", "卓胜微", "北方华创", "紫光"}},
		{Sector: "白酒", Keywords: []string{"酒", "茅台", "五粮液", "泸州", "汾酒"}},
		{Sector: "人工智能", Keywords: []string{"智能", "AI", "科大", "三六零", "浪潮", "中科", "海康"}},
	}}
}

// LoadThemes reads a theme file. An empty path selects the built-in themes.
// Unknown fields are rejected so a typo does not silently drop a sector.
func LoadThemes(path string) (*Themes, error) {
	if path == "" {
		return DefaultThemes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file %s: %w", path, err)
	}

	var t Themes
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every sector is named, unique and has keywords.
func (t *Themes) Validate() error {
	if len(t.Themes) == 0 {
		return fmt.Errorf("theme file defines no sectors")
	}
	seen := make(map[string]bool, len(t.Themes))
	var errs []string
	for i, th := range t.Themes {
		switch {
		case strings.TrimSpace(th.Sector) == "":
			errs = append(errs, fmt.Sprintf("theme %d has no sector name", i))
		case seen[th.Sector]:
			errs = append(errs, fmt.Sprintf("sector %q defined twice", th.Sector))
		case len(th.Keywords) == 0:
			errs = append(errs, fmt.Sprintf("sector %q has no keywords", th.Sector))
		}
		seen[th.Sector] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid themes: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Keywords returns the keywords of sector and whether it is known.
func (t *Themes) Keywords(sector string) ([]string, bool) {
	for _, th := range t.Themes {
		if th.Sector == sector {
			return th.Keywords, true
		}
	}
	return nil, false
}

// Sectors lists the sector names in file order.
func (t *Themes) Sectors() []string {
	names := make([]string, len(t.Themes))
	for i, th := range t.Themes {
		names[i] = th.Sector
	}
	return names
}
