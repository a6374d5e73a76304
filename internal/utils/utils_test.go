package utils

import (
	"strconv"
	"testing"
	"time"
)

func TestNormalizeMobile(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"98765 43210", "9876543210"},
		{"98765-43210", "9876543210"},
		{"+91 98765 43210", "919876543210"},
		{"  9876543210  ", "9876543210"},
		{"(987) 654-3210", "9876543210"},
		{"", ""},
	}

	for _, tt := range cases {
		if got := NormalizeMobile(tt.in); got != tt.want {
			t.Fatalf("NormalizeMobile(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidMobile(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"9876543210", true},
		{"987654321", false},
		{"98765432100", false},
		{"98765abcde", false},
		{"", false},
	}

	for _, tt := range cases {
		if got := IsValidMobile(tt.in); got != tt.valid {
			t.Fatalf("IsValidMobile(%q) = %v, want %v", tt.in, got, tt.valid)
		}
	}
}

func TestGenerateTicketID(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 30, 0, 0, time.Local)

	for i := 0; i < 100; i++ {
		id := GenerateTicketID(now)
		if len(id) != 9 {
			t.Fatalf("id %q has length %d, want 9", id, len(id))
		}
		if id[:6] != "260305" {
			t.Fatalf("id %q does not start with date prefix 260305", id)
		}
		suffix, err := strconv.Atoi(id[6:])
		if err != nil {
			t.Fatalf("suffix of %q is not numeric: %v", id, err)
		}
		if suffix < 100 || suffix > 999 {
			t.Fatalf("suffix %d out of range", suffix)
		}
	}
}
