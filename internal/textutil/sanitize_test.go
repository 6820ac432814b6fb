package textutil

import "testing"

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"  intro  ":          "intro",
		"a/b\\c:d*e":         "a-b-c-d-e",
		`what?"<now>|`:       "whatnow",
		"":                   "",
		"Loop: take 2 / v3 ": "Loop- take 2 - v3",
		"tab\there\x00":      "tab here",
		"a/b: c":             "a-b- c",
		"a\tb":               "a b",
		"line\r\nbreak":      "line break",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToken(t *testing.T) {
	cases := map[string]string{
		"MAGF-12":    "magf-12",
		"My Clip!":   "my_clip",
		"Intro Clip": "intro_clip",
		"   ":        "container",
		"__--__":     "container",
		"Ünïcode Ok": "unicode_ok",
		"a  --  b":   "a_--_b",
	}
	for in, want := range cases {
		if got := Token(in); got != want {
			t.Errorf("Token(%q) = %q, want %q", in, got, want)
		}
	}
}
