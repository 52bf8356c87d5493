package project

import (
	"reflect"
	"strings"
	"testing"
)

func TestCSVRoundTrip(t *testing.T) {
	program := Program{
		LineSpeed{30},
		ZClearance{5},
		DummyPoint{0, 0, 100},
		Output{Port: 1, State: 0},
		DummyPoint{150.25, 150, 90},
		Output{Port: 1, State: 1},
		LineStart{140, 150, 90},
		LinePassing{140, 145, 90},
		LineEnd{140, 140, 90},
		Output{Port: 1, State: 0},
		EndProgram{},
	}

	parsed := ParseProgramCSV(program.To_csv())
	if !reflect.DeepEqual(parsed, program) {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", parsed, program)
	}
}

func TestCSVRowLayout(t *testing.T) {
	csv := Program{
		LineSpeed{22.5},
		Output{Port: 2, State: 1},
		DummyPoint{1, 2.5, 3},
		EndProgram{},
	}.To_csv()

	want := "Line Speed,22.5\n" +
		"Output,2,1\n" +
		"Dummy Point,1,2.5,3\n" +
		"End Program\n"
	if csv != want {
		t.Fatalf("unexpected CSV:\n%q\nwant\n%q", csv, want)
	}
}

func TestParseSkipsUnrecognizedRows(t *testing.T) {
	text := "Line Speed,30\n" +
		"Arc Point,1,2,3\n" + // unknown kind
		"Output,1\n" + // wrong field count
		"Dummy Point,1,2,notanumber\n" +
		"End Program\n"

	parsed := ParseProgramCSV(text)
	want := Program{LineSpeed{30}, EndProgram{}}
	if !reflect.DeepEqual(parsed, want) {
		t.Fatalf("unexpected parse result: %v", parsed)
	}
}

func TestParseToleratesSpacing(t *testing.T) {
	parsed := ParseProgramCSV("Output, 1, 1\r\n\nLine Speed, 10\n")
	want := Program{Output{Port: 1, State: 1}, LineSpeed{10}}
	if !reflect.DeepEqual(parsed, want) {
		t.Fatalf("unexpected parse result: %v", parsed)
	}
}

func TestCSVNeverQuotes(t *testing.T) {
	csv := Program{DummyPoint{-1.5, 0, 0.001}}.To_csv()
	if strings.ContainsAny(csv, "\"'") {
		t.Fatalf("CSV output must stay bare: %q", csv)
	}
}
