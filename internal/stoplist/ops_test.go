package stoplist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"eco-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOps(t *testing.T) {
	f := New()
	ops := []Op{
		InsertStop{},
		EditLocation{Index: 1, Text: "middle"},
		ResolveStop{Index: 0, Place: domain.Place{FormattedAddress: "start", Location: domain.Coordinate{Lat: 1, Lng: 1}}},
		SetField{Field: FieldMaintainOrder, Bool: true},
		SetField{Field: FieldVehicleNumber, Text: "BUS-42"},
		SetField{Field: FieldTime, Text: "55.0"},
		SetField{Field: FieldCurrentFuel, Text: "20.0"},
	}

	for _, op := range ops {
		var err error
		f, err = Apply(f, op)
		require.NoError(t, err, "%T", op)
	}

	require.Equal(t, 3, f.Len())
	s, _ := f.Stop(1)
	assert.Equal(t, "middle", s.Location)
	assert.Equal(t, []int{1, 2}, f.Unresolved())
	assert.True(t, f.MaintainOrder())
	assert.Equal(t, "BUS-42", f.VehicleNumber())
	assert.Equal(t, "55.0", f.Time())
	assert.Equal(t, "20.0", f.CurrentFuel())

	f, err := Apply(f, RemoveStop{Index: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestApplyRejectsBadOps(t *testing.T) {
	f := New()

	got, err := Apply(f, RemoveStop{Index: 0})
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
	assert.Equal(t, f, got)

	_, err = Apply(f, SetField{Field: "colour"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = Apply(f, nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestLoadCatalogBuiltin(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	tpl, ok := c.Get("ithaca-schools")
	require.True(t, ok)
	assert.Len(t, tpl.Stops, 15)
	assert.Equal(t, "BUS-001", tpl.VehicleNumber)
	for _, s := range tpl.Stops {
		require.True(t, s.Resolved())
	}

	f, err := Apply(New(), LoadPreset{Template: tpl})
	require.NoError(t, err)
	assert.Equal(t, 15, f.Len())
	assert.Empty(t, f.Unresolved())
}

func TestLoadCatalogDirectoryOverrides(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
name: depot-loop
vehicleNumber: VAN-3
stops:
  - location: Depot
    lat: 40.0
    lng: -75.0
  - location: Depot
    lat: 40.0
    lng: -75.0
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "depot.yaml"), data, 0o644))

	c, err := LoadCatalog(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"depot-loop", "ithaca-schools"}, c.Names())
	tpl, ok := c.Get("depot-loop")
	require.True(t, ok)
	assert.Equal(t, "VAN-3", tpl.VehicleNumber)

	_, err = LoadCatalog(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestParseTemplateErrors(t *testing.T) {
	_, err := ParseTemplate([]byte(`stops: []`))
	assert.Error(t, err)

	_, err = ParseTemplate([]byte("name: one\nstops:\n  - location: a\n"))
	assert.Error(t, err)

	_, err = ParseTemplate([]byte("name: half\nstops:\n  - location: a\n    lat: 1\n  - location: b\n"))
	assert.Error(t, err)
}

func TestCatalogGetReturnsCopy(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	a, _ := c.Get("ithaca-schools")
	a.Stops[0].Coords.Lat = 0

	b, _ := c.Get("ithaca-schools")
	assert.NotEqual(t, 0.0, b.Stops[0].Coords.Lat)
}
