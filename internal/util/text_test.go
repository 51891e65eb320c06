package util

import "testing"

func TestPadRight(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{in: "abc", width: 5, want: "abc  "},
		{in: "abcdef", width: 3, want: "abc"},
		{in: "größe", width: 3, want: "grö"},
		{in: "", width: 2, want: "  "},
		{in: "a\nb\tc", width: 6, want: "a b c "},
		{in: "a\r\nb", width: 3, want: "a  "},
	}
	for _, tc := range cases {
		if got := PadRight(tc.in, tc.width); got != tc.want {
			t.Fatalf("PadRight(%q, %d) = %q want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestPadLeftZero(t *testing.T) {
	if got := PadLeftZero("8", 11); got != "00000000008" {
		t.Fatalf("got %q", got)
	}
	if got := PadLeftZero("1234", 3); got != "1234" {
		t.Fatalf("got %q", got)
	}
}

func TestFold(t *testing.T) {
	// "u" followed by a combining diaeresis composes to "ü"
	if got := Fold("STU\u0308CK"); got != "stück" {
		t.Fatalf("got %q", got)
	}
}

func TestJoinFields(t *testing.T) {
	if got := JoinFields("Viega", "Sanpress", "", "22", ""); got != "Viega Sanpress  22" {
		t.Fatalf("got %q", got)
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("Kupferrohr\r\n22x1\tHart"); got != "Kupferrohr  22x1 Hart" {
		t.Fatalf("got %q", got)
	}
}
