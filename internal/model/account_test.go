package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPhone(t *testing.T) {
	cases := map[string]string{
		"+7 900 123-45-67":  "+79001234567",
		" (555) 010.2030\t": "5550102030",
		"+15551234567":      "+15551234567",
		"":                  "",
		"abc":               "abc",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalPhone(in), in)
	}
}
