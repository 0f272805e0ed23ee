package segments

import "testing"

func TestRoundedVersusTruncatedBoundaries(t *testing.T) {
	// 12.3456s rounds to 12346ms but truncates to 12345ms.
	seg := Segment{StartSec: 12.3456, EndSec: 90}
	if got := seg.StartMs(); got != 12346 {
		t.Fatalf("StartMs = %d, want 12346", got)
	}
	if got := seg.StartMsTrunc(); got != 12345 {
		t.Fatalf("StartMsTrunc = %d, want 12345", got)
	}
}

func TestContainingHalfOpen(t *testing.T) {
	set := Set{Segments: []Segment{{StartSec: 30, EndSec: 90}}}

	if _, ok := set.Containing(29999, 0); ok {
		t.Fatal("29999ms should be outside")
	}
	if _, ok := set.Containing(30000, 0); !ok {
		t.Fatal("30000ms should be inside (closed start)")
	}
	if _, ok := set.Containing(89999, 0); !ok {
		t.Fatal("89999ms should be inside")
	}
	if _, ok := set.Containing(90000, 0); ok {
		t.Fatal("90000ms should be outside (open end)")
	}
}

func TestContainingShift(t *testing.T) {
	set := Set{Segments: []Segment{{StartSec: 30, EndSec: 90}}}
	if _, ok := set.Containing(30000, 5000); ok {
		t.Fatal("shifted segment starts at 35000ms")
	}
	if _, ok := set.Containing(35000, 5000); !ok {
		t.Fatal("35000ms should be inside shifted segment")
	}
}

func TestContainingFirstMatchWins(t *testing.T) {
	set := Set{Segments: []Segment{
		{StartSec: 10, EndSec: 20},
		{StartSec: 30, EndSec: 40},
	}}
	seg, ok := set.Containing(35000, 0)
	if !ok || seg.StartSec != 30 {
		t.Fatalf("got %v ok=%v, want second segment", seg, ok)
	}
}

func TestUpcomingWindow(t *testing.T) {
	set := Set{Segments: []Segment{{StartSec: 30, EndSec: 90}}}

	if _, ok := set.Upcoming(24999, 0, 5000); ok {
		t.Fatal("segment is 5001ms away, outside the window")
	}
	seg, ok := set.Upcoming(25000, 0, 5000)
	if !ok || seg.StartSec != 30 {
		t.Fatalf("expected upcoming segment, got ok=%v", ok)
	}
	if _, ok := set.Upcoming(30000, 0, 5000); ok {
		t.Fatal("segment already started, not upcoming")
	}
}

func TestSegmentValid(t *testing.T) {
	cases := []struct {
		seg  Segment
		want bool
	}{
		{Segment{StartSec: 0, EndSec: 1}, true},
		{Segment{StartSec: 5, EndSec: 3}, false},
		{Segment{StartSec: -1, EndSec: 3}, false},
		{Segment{StartSec: 2, EndSec: 2}, false},
	}
	for _, tc := range cases {
		if got := tc.seg.Valid(); got != tc.want {
			t.Fatalf("Valid(%v) = %v, want %v", tc.seg, got, tc.want)
		}
	}
}
