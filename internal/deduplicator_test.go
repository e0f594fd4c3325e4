package internal

import (
	"testing"
	"time"
)

func TestNewDeduplicator(t *testing.T) {
	d := NewDeduplicator()
	if d == nil {
		t.Fatal("NewDeduplicator() returned nil")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestDeduplicator_Add(t *testing.T) {
	base := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		readings []*Reading
		wantAdd  int
		wantDups int
	}{
		{
			name:     "empty readings",
			readings: []*Reading{},
		},
		{
			name: "no duplicates",
			readings: []*Reading{
				CreateTestReading(ReadingSensor, base, 0, "100"),
				CreateTestReading(ReadingSensor, base.Add(5*time.Minute), 0, "101"),
			},
			wantAdd: 2,
		},
		{
			name: "same time different type",
			readings: []*Reading{
				CreateTestReading(ReadingSensor, base, 0, "100"),
				CreateTestReading(ReadingCalibration, base, 0, "100"),
			},
			wantAdd: 2,
		},
		{
			name: "duplicates with different index",
			readings: []*Reading{
				{Index: 2, Source: "a.csv", Type: ReadingSensor, InternalTime: base, DisplayTime: base, Value: "100"},
				{Index: 9, Source: "b.csv", Type: ReadingSensor, InternalTime: base, DisplayTime: base, Value: "100"},
			},
			wantAdd:  1,
			wantDups: 1,
		},
		{
			name:     "nil reading",
			readings: []*Reading{nil, CreateTestReading(ReadingSensor, base, 0, "100")},
			wantAdd:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDeduplicator()
			added, dups := d.Add(tt.readings)
			if added != tt.wantAdd || dups != tt.wantDups {
				t.Errorf("Add() = (%d, %d), want (%d, %d)", added, dups, tt.wantAdd, tt.wantDups)
			}
		})
	}
}

func TestDeduplicator_FirstOccurrenceWins(t *testing.T) {
	base := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	first := &Reading{Index: 2, Source: "a.csv", Type: ReadingSensor, InternalTime: base, DisplayTime: base, Value: "100"}
	second := &Reading{Index: 9, Source: "b.csv", Type: ReadingSensor, InternalTime: base, DisplayTime: base, Value: "100"}

	got := NewDeduplicator().Deduplicate([]*Reading{first, second})
	if len(got) != 1 || got[0] != first {
		t.Errorf("Deduplicate() kept %+v, want the first occurrence", got)
	}
}

func TestDeduplicator_SortedIsStable(t *testing.T) {
	base := time.Date(2014, 3, 1, 10, 0, 0, 0, time.UTC)
	late := CreateTestReading(ReadingSensor, base.Add(10*time.Minute), 0, "110")
	sensor := CreateTestReading(ReadingSensor, base, 0, "100")
	calibration := CreateTestReading(ReadingCalibration, base, 0, "98")

	d := NewDeduplicator()
	d.Add([]*Reading{late, calibration, sensor})
	got := d.Sorted()

	want := []*Reading{calibration, sensor, late}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %s at %v, want %s at %v", i, got[i].Type, got[i].InternalTime, want[i].Type, want[i].InternalTime)
		}
	}
}
