package cadence

import (
	"math"
	"testing"
)

// ---- Records ---------------------------------------------------------------------

func TestNumericRecord(t *testing.T) {
	pt := newRecord(10.0, 30)
	if pt.Kind != RecordNumeric {
		t.Fatalf("Kind = %s, want numeric", pt.Kind)
	}
	if pt.Start != 10 || pt.Change != 20 {
		t.Errorf("Start=%f Change=%f, want 10 and 20", pt.Start, pt.Change)
	}
	if got := pt.Value(0.25); got != 15 {
		t.Errorf("Value(0.25) = %f, want 15", got)
	}
	if got := pt.Value(1); got != 30 {
		t.Errorf("Value(1) = %f, want 30", got)
	}
}

func TestNumericRecordEndIsExact(t *testing.T) {
	pt := newRecord(0.1, 0.3)
	if got := pt.Value(1); got != 0.3 {
		t.Errorf("Value(1) = %v, want exactly 0.3", got)
	}
}

func TestRelativeRecords(t *testing.T) {
	cases := []struct {
		start float64
		end   string
		want  float64
	}{
		{5, "+=10", 15},
		{5, "-=10", -5},
		{5, "*=3", 15},
		{6, "/=2", 3},
		{1, "+=2.5px", 3.5},
	}
	for _, c := range cases {
		pt := newRecord(c.start, c.end)
		if got := pt.Value(1); got != c.want {
			t.Errorf("%v %s: Value(1) = %f, want %f", c.start, c.end, got, c.want)
		}
	}
}

func TestBoolRecord(t *testing.T) {
	var got []bool
	pt := newRecord(true, false)
	pt.set = func(v any) { got = append(got, v.(bool)) }
	pt.render(0)
	pt.render(0.5)
	pt.render(1)
	if len(got) != 3 || !got[0] || !got[1] || got[2] {
		t.Errorf("bool renders = %v, want [true true false]", got)
	}
}

func TestComplexRecordKeepsUnchangedNumbers(t *testing.T) {
	var got string
	pt := newRecord("10px 20px", "30px 20px")
	pt.set = func(v any) { got = v.(string) }
	if pt.Kind != RecordComplex {
		t.Fatalf("Kind = %s, want complex", pt.Kind)
	}

	pt.render(0.5)
	if got != "20px 20px" {
		t.Errorf("render(0.5) = %q, want %q", got, "20px 20px")
	}
	pt.render(0)
	if got != "10px 20px" {
		t.Errorf("render(0) = %q, want the start string", got)
	}
	pt.render(1)
	if got != "30px 20px" {
		t.Errorf("render(1) = %q, want the end string", got)
	}
}

func TestComplexRecordRoundsColorChannels(t *testing.T) {
	var got string
	pt := newRecord("rgba(0,0,0,1)", "rgba(255,0,0,0.5)")
	pt.set = func(v any) { got = v.(string) }
	pt.render(0.5)
	if got != "rgba(128,0,0,0.75)" {
		t.Errorf("render(0.5) = %q, want rgba(128,0,0,0.75)", got)
	}
}

func TestComplexRecordRelativeEnd(t *testing.T) {
	var got string
	pt := newRecord("translate(10, 5)", "translate(+=10, 5)")
	pt.set = func(v any) { got = v.(string) }
	pt.render(1)
	if got != "translate(20, 5)" {
		t.Errorf("render(1) = %q, want translate(20, 5)", got)
	}
}

func TestRecordSkipsNonFinite(t *testing.T) {
	calls := 0
	pt := newRecord(0.0, math.Inf(1))
	pt.set = func(any) { calls++ }
	pt.render(0.5)
	pt.render(1)
	if calls != 0 {
		t.Errorf("set called %d times for non-finite values, want 0", calls)
	}
}

func TestRecordModifierThenRound(t *testing.T) {
	var got float64
	pt := newRecord(0.0, 10.0)
	pt.set = func(v any) { got = v.(float64) }
	pt.Modifier = func(v float64) float64 { return v * 3 }
	pt.Round = true
	pt.render(0.25)
	if got != 8 {
		t.Errorf("render(0.25) = %f, want 8 (7.5 rounded)", got)
	}
}

// ---- Parsing ---------------------------------------------------------------------

func TestParseLeadingFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10px", 10, true},
		{"-2.5deg", -2.5, true},
		{".5", 0.5, true},
		{"1e2ms", 100, true},
		{"px", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLeadingFloat(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseLeadingFloat(%q) = %f, %v; want %f, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestIsRelative(t *testing.T) {
	for in, want := range map[string]bool{
		"+=1": true,
		"-=1": true,
		"*=2": true,
		"/=2": true,
		"+=":  false,
		"=1":  false,
		"10":  false,
	} {
		if got := isRelative(in); got != want {
			t.Errorf("isRelative(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRecordKindString(t *testing.T) {
	if RecordPlugin.String() != "plugin" || RecordKind(9).String() != "unknown" {
		t.Error("unexpected RecordKind names")
	}
}
