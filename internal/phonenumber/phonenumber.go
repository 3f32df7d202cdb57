// Package phonenumber canonicalizes phone number strings so that differently
// formatted representations of the same mobile number compare equal.
package phonenumber

import "strings"

// CountryProfile describes the normalization rules for one country.
// The zero-padding recovery is a documented heuristic: spreadsheets commonly
// strip the leading zero from mobile numbers, leaving exactly
// NationalDigits digits with no prefix.
type CountryProfile struct {
	// CallingCode is the international calling code without "+", e.g. "61".
	CallingCode string
	// NationalDigits is the number of digits in a national number after the
	// leading zero, e.g. 9 for Australian mobiles (04xx xxx xxx).
	NationalDigits int
	// TailDigits is how many trailing digits two normalized numbers must
	// share to be considered the same number.
	TailDigits int
}

// Australia is the default profile.
var Australia = CountryProfile{CallingCode: "61", NationalDigits: 9, TailDigits: 9}

// Normalizer canonicalizes raw phone strings under a country profile.
type Normalizer struct {
	profile CountryProfile
}

// New returns a Normalizer for the given profile. A zero TailDigits falls
// back to NationalDigits so a partially filled profile still matches.
func New(profile CountryProfile) *Normalizer {
	if profile.TailDigits <= 0 {
		profile.TailDigits = profile.NationalDigits
	}
	return &Normalizer{profile: profile}
}

// Normalize canonicalizes a raw phone string:
//   - strips every character that is not a digit, keeping a leading "+";
//   - rewrites a country-code form to the local 0-prefixed form
//     ("61412345678" or "+61412345678" -> "0412345678");
//   - recovers a stripped leading zero when the value is all digits, has
//     exactly NationalDigits digits, and starts with neither "0" nor "+";
//   - empty or digit-free input normalizes to "".
func (n *Normalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	plus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	cc := n.profile.CallingCode
	if cc != "" && strings.HasPrefix(digits, cc) && len(digits) == len(cc)+n.profile.NationalDigits {
		return "0" + digits[len(cc):]
	}

	if !plus && len(digits) == n.profile.NationalDigits && !strings.HasPrefix(digits, "0") {
		// Leading-zero recovery heuristic; see CountryProfile.
		return "0" + digits
	}

	if plus {
		return "+" + digits
	}
	return digits
}

// TailKey returns the trailing TailDigits digits of the normalized form.
// This is the comparison key for owner resolution and dedup matching; it is
// what makes "0412345678" and "+61412345678" the same number. Empty input
// yields "" which never matches anything.
func (n *Normalizer) TailKey(raw string) string {
	norm := strings.TrimPrefix(n.Normalize(raw), "+")
	if norm == "" {
		return ""
	}
	if len(norm) <= n.profile.TailDigits {
		return norm
	}
	return norm[len(norm)-n.profile.TailDigits:]
}

// Same reports whether two raw phone strings denote the same number.
func (n *Normalizer) Same(a, b string) bool {
	ka := n.TailKey(a)
	if ka == "" {
		return false
	}
	return ka == n.TailKey(b)
}
