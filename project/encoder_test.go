package project

import (
	"reflect"
	"testing"
)

func TestFrameEncode(t *testing.T) {
	cases := []struct {
		frame Frame
		want  string
	}{
		{vaFrame(1.5, 2, 3), "VA 1.5,2,3\r"},
		{idFrame(), "ID \r"},
		{ouFrame(1, 0), "OU 1,0\r"},
		{spFrame(30), "SP 30\r"},
	}
	for _, c := range cases {
		if got := string(c.frame.Encode()); got != c.want {
			t.Fatalf("Encode() = %q, want %q", got, c.want)
		}
	}
}

func TestEncodeBracketed(t *testing.T) {
	program, err := scenarioConverter().Convert()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := EncodeProgram(program, false)
	want := []Frame{
		spFrame(30),
		vaFrame(0, 0, 100), idFrame(),
		ouFrame(1, 0),
		vaFrame(150, 150, 90), idFrame(),
		ouFrame(1, 1),
		vaFrame(140, 150, 90), idFrame(),
		vaFrame(140, 140, 90), idFrame(),
		ouFrame(1, 0),
		spFrame(30),
	}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("unexpected frames:\n got %v\nwant %v", frames, want)
	}
}

func TestEncodeContinuousDirectMapping(t *testing.T) {
	program, err := scenarioConverter().Convert()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := EncodeProgram(program, true)
	want := []Frame{
		spFrame(30),
		vaFrame(0, 0, 100), idFrame(),
		ouFrame(1, 0),
		vaFrame(150, 150, 90), idFrame(),
		ouFrame(1, 1),
		vaFrame(140, 150, 90), idFrame(),
		vaFrame(140, 140, 90), idFrame(),
		ouFrame(1, 0),
	}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("unexpected frames:\n got %v\nwant %v", frames, want)
	}
}

func countSyncCycles(frames []Frame, port int) int {
	count := 0
	on := ouFrame(port, 1)
	off := ouFrame(port, 0)
	for i := 0; i+2 < len(frames); i++ {
		if reflect.DeepEqual(frames[i], on) &&
			reflect.DeepEqual(frames[i+1], idFrame()) &&
			reflect.DeepEqual(frames[i+2], off) {
			count++
		}
	}
	return count
}

func TestForcedSyncCycleAfter99Points(t *testing.T) {
	program := Program{Output{Port: 1, State: 1}}
	for i := 0; i < 150; i++ {
		program = append(program, DummyPoint{float64(i), 0, 0})
	}
	program = append(program, Output{Port: 1, State: 0}, EndProgram{})

	frames := EncodeProgram(program, false)

	if got := countSyncCycles(frames, 1); got != 1 {
		t.Fatalf("expected exactly one forced synchronization cycle, got %d", got)
	}

	// OU on + 99 points + OU,ID,OU + 51 points + OU off + SP
	wantLen := 1 + 99*2 + 3 + 51*2 + 2
	if len(frames) != wantLen {
		t.Fatalf("expected %d frames, got %d", wantLen, len(frames))
	}

	// the cycle sits directly after the 99th point's pulse
	cycleAt := 1 + 99*2
	if !reflect.DeepEqual(frames[cycleAt], ouFrame(1, 1)) ||
		!reflect.DeepEqual(frames[cycleAt+1], idFrame()) ||
		!reflect.DeepEqual(frames[cycleAt+2], ouFrame(1, 0)) {
		t.Fatalf("synchronization cycle misplaced: %v", frames[cycleAt:cycleAt+3])
	}
}

func TestEncodeSkipsUnexpectedKinds(t *testing.T) {
	program := Program{
		LineStart{1, 2, 3},
		DummyPoint{4, 5, 6},
		EndProgram{},
	}
	frames := EncodeProgram(program, false)
	want := []Frame{vaFrame(4, 5, 6), idFrame()}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("unexpected kinds must be skipped, got %v", frames)
	}
}

func TestEncodeFrames(t *testing.T) {
	raw := EncodeFrames([]Frame{spFrame(30), idFrame()})
	if string(raw) != "SP 30\rID \r" {
		t.Fatalf("unexpected raw bytes: %q", raw)
	}
}
