package project

import (
	"reflect"
	"testing"
)

func TestSegmentProgram(t *testing.T) {
	program := Program{
		LineSpeed{30},
		ZClearance{5},
		DummyPoint{0, 0, 100},
		Output{Port: 1, State: 0},
		DummyPoint{150, 150, 90},
		Output{Port: 1, State: 1},
		DummyPoint{140, 150, 90},
		DummyPoint{140, 140, 90},
		Output{Port: 1, State: 0},
		DummyPoint{130, 140, 90},
		EndProgram{},
	}

	segments := SegmentProgram(program)
	want := []PathSegment{
		{Points: [][3]float64{{0, 0, 100}}, Outputs: [4]int{0, 0, 0, 0}},
		{Points: [][3]float64{{150, 150, 90}}, Outputs: [4]int{0, 0, 0, 0}},
		{Points: [][3]float64{{140, 150, 90}, {140, 140, 90}}, Outputs: [4]int{1, 0, 0, 0}},
		{Points: [][3]float64{{130, 140, 90}}, Outputs: [4]int{0, 0, 0, 0}},
	}
	if !reflect.DeepEqual(segments, want) {
		t.Fatalf("unexpected segments:\n got %v\nwant %v", segments, want)
	}
}

func TestSegmentProgramInterleavedSpeeds(t *testing.T) {
	program := Program{
		Output{Port: 2, State: 1},
		DummyPoint{1, 0, 0},
		LineSpeed{10}, // does not break the run
		DummyPoint{2, 0, 0},
		EndProgram{},
	}
	segments := SegmentProgram(program)
	if len(segments) != 1 {
		t.Fatalf("speed changes must not break a run, got %d segments", len(segments))
	}
	if segments[0].Outputs != [4]int{0, 1, 0, 0} {
		t.Fatalf("unexpected output vector: %v", segments[0].Outputs)
	}
	if len(segments[0].Points) != 2 {
		t.Fatalf("unexpected point count: %d", len(segments[0].Points))
	}
}

func TestSegmentProgramEmpty(t *testing.T) {
	if got := SegmentProgram(Program{LineSpeed{30}, EndProgram{}}); len(got) != 0 {
		t.Fatalf("expected no segments, got %v", got)
	}
}
