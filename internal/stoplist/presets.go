package stoplist

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"eco-route-service/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var builtinPresets embed.FS

// Template is a known-good form used for demos. It is applied without
// per-field validation.
type Template struct {
	Name          string
	Description   string
	Stops         []domain.Stop
	MaintainOrder bool
	CurrentFuel   string
	Time          string
	VehicleNumber string
}

type templateFile struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	MaintainOrder bool   `yaml:"maintainOrder"`
	CurrentFuel   string `yaml:"currentFuel"`
	Time          string `yaml:"time"`
	VehicleNumber string `yaml:"vehicleNumber"`
	Stops         []struct {
		Location string   `yaml:"location"`
		Lat      *float64 `yaml:"lat"`
		Lng      *float64 `yaml:"lng"`
	} `yaml:"stops"`
}

// Catalog is a read-only set of templates keyed by name.
type Catalog struct {
	byName map[string]Template
}

// LoadCatalog reads the built-in templates, then every *.yaml file in dir.
// A template in dir replaces a built-in one with the same name. An empty dir
// loads only the built-ins.
func LoadCatalog(dir string) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Template)}

	if err := c.loadFS(builtinPresets, "presets"); err != nil {
		return nil, fmt.Errorf("load catalog: builtin: %w", err)
	}

	if strings.TrimSpace(dir) == "" {
		return c, nil
	}

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("load catalog: presets dir %q: %w", dir, err)
	}
	if err := c.loadFS(os.DirFS(dir), "."); err != nil {
		return nil, fmt.Errorf("load catalog: %q: %w", dir, err)
	}

	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS, root string) error {
	matches, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(root, "*.yaml")))
	if err != nil {
		return err
	}

	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return fmt.Errorf("read %q: %w", m, err)
		}

		t, err := ParseTemplate(data)
		if err != nil {
			return fmt.Errorf("parse %q: %w", m, err)
		}
		c.byName[t.Name] = t
	}

	return nil
}

// ParseTemplate decodes one YAML template.
func ParseTemplate(data []byte) (Template, error) {
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return Template{}, fmt.Errorf("parse template: %w", err)
	}

	name := strings.TrimSpace(tf.Name)
	if name == "" {
		return Template{}, errors.New("parse template: name is required")
	}
	if len(tf.Stops) < minStops {
		return Template{}, fmt.Errorf("parse template %q: need at least %d stops, got %d", name, minStops, len(tf.Stops))
	}

	t := Template{
		Name:          name,
		Description:   tf.Description,
		MaintainOrder: tf.MaintainOrder,
		CurrentFuel:   tf.CurrentFuel,
		Time:          tf.Time,
		VehicleNumber: tf.VehicleNumber,
		Stops:         make([]domain.Stop, 0, len(tf.Stops)),
	}
	for i, s := range tf.Stops {
		stop := domain.Stop{Location: s.Location}
		if s.Lat != nil && s.Lng != nil {
			stop.Coords = &domain.Coordinate{Lat: *s.Lat, Lng: *s.Lng}
		} else if s.Lat != nil || s.Lng != nil {
			return Template{}, fmt.Errorf("parse template %q: stop #%d has only one of lat/lng", name, i+1)
		}
		t.Stops = append(t.Stops, stop)
	}

	return t, nil
}

// Get returns a copy of the named template.
func (c *Catalog) Get(name string) (Template, bool) {
	t, ok := c.byName[name]
	if !ok {
		return Template{}, false
	}
	t.Stops = domain.CloneStops(t.Stops)
	return t, true
}

// Names lists template names in lexical order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
