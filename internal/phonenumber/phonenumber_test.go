package phonenumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := New(Australia)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local form unchanged", "0412345678", "0412345678"},
		{"plus country code rewritten", "+61412345678", "0412345678"},
		{"bare country code rewritten", "61412345678", "0412345678"},
		{"stripped leading zero recovered", "412345678", "0412345678"},
		{"spaces and punctuation stripped", "04 1234-5678", "0412345678"},
		{"formatted international", "+61 412 345 678", "0412345678"},
		{"empty input", "", ""},
		{"no digits", "call me", ""},
		{"foreign number kept verbatim", "+14155550100", "+14155550100"},
		{"short code untouched", "1776", "1776"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestSame_EquivalentForms(t *testing.T) {
	n := New(Australia)

	// All representations of the same AU mobile must compare equal.
	forms := []string{"0412345678", "+61412345678", "61412345678", "412345678"}
	for _, a := range forms {
		for _, b := range forms {
			assert.True(t, n.Same(a, b), "%q and %q should match", a, b)
		}
	}
}

func TestSame_Mismatches(t *testing.T) {
	n := New(Australia)

	assert.False(t, n.Same("0412345678", "0412345679"))
	assert.False(t, n.Same("", "0412345678"))
	assert.False(t, n.Same("", ""))
	assert.False(t, n.Same("no digits", "0412345678"))
}

func TestTailKey(t *testing.T) {
	n := New(Australia)

	assert.Equal(t, "412345678", n.TailKey("0412345678"))
	assert.Equal(t, "412345678", n.TailKey("+61412345678"))
	assert.Equal(t, "", n.TailKey(""))
	// Numbers shorter than the tail length are used whole.
	assert.Equal(t, "1776", n.TailKey("1776"))
}

func TestNormalize_DoesNotRecoverZeroWithPlus(t *testing.T) {
	n := New(Australia)

	// A 9-digit number behind "+" is an international number, not a
	// zero-stripped local one.
	assert.Equal(t, "+123456789", n.Normalize("+123456789"))
}
