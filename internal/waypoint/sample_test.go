package waypoint

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSampleRoundTrip(t *testing.T) {
	want := NewSample(r3.Vec{X: 100.5, Y: -200.25, Z: 30}, 90, 3, true)

	line := want.MarshalLine()
	if line != "100.5,-200.25,30,90,3,True" {
		t.Fatalf("MarshalLine = %q", line)
	}

	got, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine(%q): %v", line, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !got.Routed {
		t.Error("routed should survive the round trip")
	}
}

func TestMarshalLineUnrouted(t *testing.T) {
	s := Sample{X: 1, Y: 2, Z: 3, Heading: 45.5, CloseBy: 7, Routed: false}
	if got, want := s.MarshalLine(), "1,2,3,45.5,7,False"; got != want {
		t.Errorf("MarshalLine = %q, want %q", got, want)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Sample
	}{
		{
			name: "full line",
			line: "1.5,2,3,180,2,False",
			want: Sample{X: 1.5, Y: 2, Z: 3, Heading: 180, CloseBy: 2, Routed: false},
		},
		{
			name: "three fields default the rest",
			line: "1,2,3",
			want: Sample{X: 1, Y: 2, Z: 3, Routed: true},
		},
		{
			name: "five fields keep routed true",
			line: "1,2,3,10,4",
			want: Sample{X: 1, Y: 2, Z: 3, Heading: 10, CloseBy: 4, Routed: true},
		},
		{
			name: "lowercase false is routed",
			line: "1,2,3,10,4,false",
			want: Sample{X: 1, Y: 2, Z: 3, Heading: 10, CloseBy: 4, Routed: true},
		},
		{
			name: "garbage routed is routed",
			line: "1,2,3,10,4,maybe",
			want: Sample{X: 1, Y: 2, Z: 3, Heading: 10, CloseBy: 4, Routed: true},
		},
		{
			name: "bad heading and closeBy fall back to zero",
			line: "1,2,3,north,x,True",
			want: Sample{X: 1, Y: 2, Z: 3, Routed: true},
		},
		{
			name: "carriage return stripped",
			line: "1,2,3,0,1,False\r",
			want: Sample{X: 1, Y: 2, Z: 3, CloseBy: 1, Routed: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine(%q): %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLineCorrupt(t *testing.T) {
	for _, line := range []string{"", "1,2", "a,b,c", "1,,3", "1,2,3x,0,0,True"} {
		_, err := ParseLine(line)
		if !errors.Is(err, ErrCorruptLine) {
			t.Errorf("ParseLine(%q) error = %v, want ErrCorruptLine", line, err)
		}
	}
}
