package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/dexcom-tools/internal"
	"github.com/iksnae/dexcom-tools/testutil"
)

func TestConvertCommand(t *testing.T) {
	if _, err := os.Stat("/usr/share/zoneinfo/America/New_York"); err != nil {
		t.Skip("tzdata not installed")
	}
	dir := testutil.CreateTempDir(t)
	input := testutil.CreateTravelExport(t, dir)
	output := filepath.Join(dir, "readings.json")

	if _, err := execute(t, "convert", input, "--tz", "America/New_York", "-o", output); err != nil {
		t.Fatalf("convert error = %v", err)
	}

	var records []internal.Record
	testutil.JSONUnmarshal(t, testutil.ReadFile(t, output), &records)
	if len(records) != 60 {
		t.Fatalf("got %d records, want 60", len(records))
	}
	for i, rec := range records {
		want := "America/New_York"
		if i <= 40 {
			want = "UTC-06:00"
		}
		if rec.Timezone != want {
			t.Errorf("record %d timezone = %s, want %s", i, rec.Timezone, want)
		}
		if rec.ID == "" {
			t.Errorf("record %d has no id", i)
		}
	}
}

func TestConvertCommand_Stdout(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	input := testutil.CreateTravelExport(t, dir)

	out, err := execute(t, "convert", input, "--tz", "UTC", "--detection", "internal", "-f", "jsonl", "-o", "-")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 60 {
		t.Errorf("got %d lines, want 60", len(lines))
	}
	if !strings.Contains(out, `"timezone":"UTC-01:00"`) {
		t.Error("older readings should be one hour behind the reference zone")
	}
}

func TestConvertCommand_DefaultOutputName(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	input := testutil.CreateTravelExport(t, dir)

	if _, err := execute(t, "convert", input, "--tz", "UTC", "-f", "md"); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	data := string(testutil.ReadFile(t, filepath.Join(dir, "travel.md")))
	if !strings.Contains(data, "## Time zone segments") {
		t.Errorf("markdown output missing segment table:\n%s", data)
	}
}

func TestConvertCommand_ConfigTimezone(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	input := testutil.CreateTravelExport(t, dir)
	config := testutil.CreateConfigFixture(t, dir, "convert:\n  timezone: UTC\n  format: yaml\n")

	if _, err := execute(t, "convert", input, "--config", config); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	data := string(testutil.ReadFile(t, filepath.Join(dir, "travel.yaml")))
	if !strings.Contains(data, "reference: UTC") {
		t.Errorf("yaml output missing reference zone:\n%s", data)
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	input := testutil.CreateTravelExport(t, dir)
	readings := internal.CreateSensorSeries(testutil.FixtureStart, 10, 5*time.Minute, 0)
	internal.ShiftDisplay(readings[:5], 17*time.Minute)
	odd := testutil.CreateExportFixture(t, dir, "odd.txt", internal.LayoutFull, readings)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no file", args: []string{"convert", "--tz", "UTC"}},
		{name: "missing zone", args: []string{"convert", input}},
		{name: "unknown zone", args: []string{"convert", input, "--tz", "Nowhere/Special"}},
		{name: "bad format", args: []string{"convert", input, "--tz", "UTC", "-f", "xml"}},
		{name: "bad detection", args: []string{"convert", input, "--tz", "UTC", "--detection", "magic"}},
		{name: "bad policy", args: []string{"convert", input, "--tz", "UTC", "--tolerance", "20m"}},
		{name: "overwrite input", args: []string{"convert", input, "--tz", "UTC", "-o", input}},
		{name: "missing input", args: []string{"convert", filepath.Join(dir, "missing.txt"), "--tz", "UTC"}},
		{name: "unresolvable", args: []string{"convert", odd, "--tz", "UTC", "--detection", "internal"}},
		{name: "bad zone hint", args: []string{"convert", input, "--tz", "UTC", "--zone-hint", "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := execute(t, "convert", odd, "--tz", "UTC", "--detection", "internal", "-o", filepath.Join(dir, "odd.json"))
	var tzErr *internal.UnresolvableTimezoneError
	if !errors.As(err, &tzErr) {
		t.Errorf("error = %v, want UnresolvableTimezoneError", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "odd.json")); !os.IsNotExist(statErr) {
		t.Error("no output should be written when conversion fails")
	}
}

func TestConvertCommand_ZoneHint(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	readings := internal.CreateSensorSeries(testutil.FixtureStart, 10, 5*time.Minute, 0)
	internal.ShiftDisplay(readings[:5], -37*time.Minute)
	input := testutil.CreateExportFixture(t, dir, "jump.txt", internal.LayoutFull, readings)
	until := strings.Replace(internal.FormatTimestamp(readings[4].DisplayTime), " ", "T", 1)

	if _, err := execute(t, "convert", input, "--tz", "UTC"); err == nil {
		t.Fatal("expected an unresolvable clock change without a hint")
	}

	out, err := execute(t, "convert", input, "--tz", "UTC", "--zone-hint", ".."+until+"=-00:37", "-o", "-")
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	var records []internal.Record
	testutil.JSONUnmarshal(t, []byte(out), &records)
	if len(records) != 10 {
		t.Fatalf("got %d records, want 10", len(records))
	}
	if records[0].Timezone != "UTC-00:37" || records[9].Timezone != "UTC" {
		t.Errorf("zones = %s .. %s, want UTC-00:37 .. UTC", records[0].Timezone, records[9].Timezone)
	}
	if want := testutil.FixtureStart.Format(time.RFC3339); records[0].UTCTime != want {
		t.Errorf("first utc = %s, want %s", records[0].UTCTime, want)
	}
}
