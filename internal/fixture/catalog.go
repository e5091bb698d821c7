package fixture

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type typeFile struct {
	Channels []struct {
		Name  string `yaml:"name"`
		Index int    `yaml:"index"`
		Type  string `yaml:"type"`
	} `yaml:"channels"`
	ColorWheelMapping map[string]int `yaml:"color_wheel_mapping"`
	DimmerOnBlack     *bool          `yaml:"dimmer_on_black"`
}

type patchFile struct {
	Universes map[int]struct {
		Fixtures []struct {
			ID           string `yaml:"id"`
			Type         string `yaml:"type"`
			StartAddress int    `yaml:"start_address"`
		} `yaml:"fixtures"`
	} `yaml:"universes"`
}

// LoadCatalog reads fixture types from a YAML file keyed by type name.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML fixture catalog. dimmer_on_black defaults to true.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw map[string]typeFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixture catalog: %w", err)
	}
	cat := make(Catalog, len(raw))
	for name, tf := range raw {
		t := &Type{
			Name:          name,
			ColorWheel:    tf.ColorWheelMapping,
			DimmerOnBlack: tf.DimmerOnBlack == nil || *tf.DimmerOnBlack,
		}
		for _, ch := range tf.Channels {
			t.Channels = append(t.Channels, ChannelDef{Name: ch.Name, Index: ch.Index, Role: parseRole(ch.Type)})
		}
		cat[name] = t
	}
	return cat, nil
}

// LoadPatch reads the patch YAML file.
func LoadPatch(path string) ([]PatchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}
	return ParsePatch(data)
}

// ParsePatch decodes a patch. Entries come out ordered by universe, then file order.
func ParsePatch(data []byte) ([]PatchEntry, error) {
	var raw patchFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	universes := make([]int, 0, len(raw.Universes))
	for id := range raw.Universes {
		universes = append(universes, id)
	}
	sort.Ints(universes)

	var entries []PatchEntry
	for _, u := range universes {
		for _, f := range raw.Universes[u].Fixtures {
			entries = append(entries, PatchEntry{ID: f.ID, Type: f.Type, Universe: u, StartAddress: f.StartAddress})
		}
	}
	return entries, nil
}
