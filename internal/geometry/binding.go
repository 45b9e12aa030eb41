package geometry

import (
	"encoding/json"
	"fmt"
	"os"
)

// RootObject is the continent overview resource.
const RootObject = "europe"

// Binding maps dataset city names to their detail geometry resource. A city
// without an entry is valid data that simply cannot be drilled into.
type Binding struct {
	root   Resource
	cities map[string]Resource
}

// DefaultBinding is the table shipped with the dataset's geometry files.
func DefaultBinding() Binding {
	return NewBinding(RootObject, map[string]string{
		"Amsterdam": "amsterdam_21",
		"Berlin":    "berlin_",
		"London":    "london_421",
		"Paris":     "paris_",
		"Rome":      "Rome",
		"Vienna":    "vienna_",
		"Barcelona": "barcelona_1191",
		"Budapest":  "varosreszek",
		"Athens":    "Athens",
	})
}

func NewBinding(root string, cities map[string]string) Binding {
	b := Binding{root: Resource{Object: root}, cities: make(map[string]Resource, len(cities))}
	for city, obj := range cities {
		b.cities[city] = Resource{Object: obj}
	}
	return b
}

func (b Binding) Root() Resource { return b.root }

// City returns the detail resource for name.
func (b Binding) City(name string) (Resource, bool) {
	r, ok := b.cities[name]
	return r, ok
}

// LoadBinding reads {"root": "...", "cities": {"City": "object"}} from path.
// An empty root keeps RootObject.
func LoadBinding(path string) (Binding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Binding{}, err
	}
	var doc struct {
		Root   string            `json:"root"`
		Cities map[string]string `json:"cities"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Binding{}, fmt.Errorf("binding %s: %w", path, err)
	}
	if doc.Root == "" {
		doc.Root = RootObject
	}
	return NewBinding(doc.Root, doc.Cities), nil
}
