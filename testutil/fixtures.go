package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/dexcom-tools/internal"
)

// FixtureStart is the internal time of the first reading in generated fixtures
var FixtureStart = time.Date(2014, 1, 10, 15, 0, 0, 0, time.UTC)

// CreateExportFixture writes readings as a tab separated export
func CreateExportFixture(t *testing.T, dir, name string, layout internal.Layout, readings []*internal.Reading) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, internal.RenderExport(layout, '\t', nil, readings), 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
	return path
}

// CreateTravelExport writes a full layout export of 60 sensor readings from a
// receiver set to US Eastern time, whose clock was still on Central time for
// the first 41 readings
func CreateTravelExport(t *testing.T, dir string) string {
	t.Helper()
	readings := internal.CreateSensorSeries(FixtureStart, 60, 5*time.Minute, -5*time.Hour)
	internal.ShiftDisplay(readings[:41], -time.Hour)
	return CreateExportFixture(t, dir, "travel.txt", internal.LayoutFull, readings)
}

// CreateOverlappingExports writes two terse exports sharing ten readings
func CreateOverlappingExports(t *testing.T, dir string) (string, string) {
	t.Helper()
	readings := internal.CreateSensorSeries(FixtureStart, 20, 5*time.Minute, -5*time.Hour)
	a := CreateExportFixture(t, dir, "a.csv", internal.LayoutTerse, readings[:15])
	b := CreateExportFixture(t, dir, "b.csv", internal.LayoutTerse, readings[5:])
	return a, b
}

// CreateConfigFixture writes a YAML config file and returns its path
func CreateConfigFixture(t *testing.T, dir, yaml string) string {
	t.Helper()
	path := filepath.Join(dir, "dexcom.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}
