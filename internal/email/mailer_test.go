package email

import "testing"

func TestEnvelopeAddress(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice <alice@tsinghua.edu.cn>", "alice@tsinghua.edu.cn"},
		{"YWT Bot <bot@example.com>", "bot@example.com"},
		{"alice@tsinghua.edu.cn", "alice@tsinghua.edu.cn"},
		{"Weird <Name <real@example.com>", "real@example.com"},
	}
	for _, tc := range cases {
		if got := envelopeAddress(tc.in); got != tc.want {
			t.Fatalf("envelopeAddress(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
