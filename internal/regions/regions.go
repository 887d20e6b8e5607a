// Package regions maps eBird region codes to display names.
package regions

import (
	_ "embed"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

type regionFile struct {
	Regions map[string]string `yaml:"regions"`
}

var (
	loadOnce sync.Once
	names    map[string]string
)

func table() map[string]string {
	loadOnce.Do(func() {
		var f regionFile
		if err := yaml.Unmarshal(regionsYAML, &f); err != nil {
			panic("regions: invalid embedded table: " + err.Error())
		}
		names = f.Regions
	})
	return names
}

// Name returns the display name of code, or code itself when unknown.
func Name(code string) string {
	if name, ok := table()[code]; ok {
		return name
	}
	return code
}

// Known reports whether code has a display name.
func Known(code string) bool {
	_, ok := table()[code]
	return ok
}

// Codes returns the known region codes in sorted order.
func Codes() []string {
	return slices.Sorted(maps.Keys(table()))
}
