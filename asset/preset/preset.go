// Package preset provides built-in procedural scenes.
package preset

import (
	"fmt"
	"sort"

	"github.com/achilleasa/polaris-viewer/asset/compiler/input"
)

// A function that generates a scene.
type Generator func() *input.Scene

var registry = map[string]Generator{
	"cornell": Cornell,
	"checker": Checker,
	"spheres": Spheres,
}

// Get the sorted list of available preset names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate the preset scene with the given name.
func New(name string) (*input.Scene, error) {
	gen, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("preset: unknown scene %q; available presets: %v", name, Names())
	}
	return gen(), nil
}
