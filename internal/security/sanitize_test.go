package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Ana  ", want: "Ana"},
		{in: "Ana\n\tMaría", want: "Ana María"},
		{in: "<b>Xosé</b>", want: "Xosé"},
		{in: "Eva<script>alert(1)</script>", want: "Eva"},
		{in: "O\\'Brien", want: "O'Brien"},
		{in: "abc%3Cdef", want: "abcdef"},
		{in: "bell\x07char", want: "bellchar"},
		{in: "broken <tag", want: "broken"},
		{in: "ok\xffbyte", want: "okbyte"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: " Ana@Example.ORG ", want: "ana@example.org"},
		{in: "ana(at)@example.org", want: "anaat@example.org"},
		{in: "ana@-example-.org.", want: "ana@example.org"},
		{in: "ana@localhost", want: ""},
		{in: "no-at-sign", want: ""},
		{in: "@example.org", want: ""},
		{in: "ana@", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeEmail(tt.in), "input %q", tt.in)
	}
}
