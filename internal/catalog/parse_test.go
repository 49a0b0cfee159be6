package catalog

import "testing"

func TestParseGrade(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{input: "N20", want: 20, ok: true},
		{input: "N5", want: 5, ok: true},
		{input: "N100", want: 100, ok: true},
		{input: "n20", ok: false},
		{input: "N", ok: false},
		{input: "N20a", ok: false},
		{input: "20", ok: false},
		{input: "", ok: false},
		{input: "N-5", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseGrade(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseGrade(%q): expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseGrade(%q): expected %d, got %d", tc.input, tc.want, got)
		}
	}
}

func TestParseMortarRatio(t *testing.T) {
	cases := []struct {
		input string
		want  MixRatio
		ok    bool
	}{
		{input: "1:3", want: MixRatio{Cement: 1, Sand: 3}, ok: true},
		{input: "2:5", want: MixRatio{Cement: 2, Sand: 5}, ok: true},
		{input: "10:30", want: MixRatio{Cement: 10, Sand: 30}, ok: true},
		{input: "1:3:5", ok: false},
		{input: "1-3", ok: false},
		{input: ":3", ok: false},
		{input: "1:", ok: false},
		{input: "a:b", ok: false},
		{input: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseMortarRatio(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseMortarRatio(%q): expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseMortarRatio(%q): expected %+v, got %+v", tc.input, tc.want, got)
		}
	}
}
