package sanitizer

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// DefaultRegions are tried in order when a phone number has no country prefix.
var DefaultRegions = []string{"US", "GB", "IL"}

// TrimAndNormalize trims the string and collapses every whitespace run to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s))
	lastWasSpace := false

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}

	return result.String()
}

// TrimMultiline trims each line and drops runs of blank lines, keeping paragraph breaks.
func TrimMultiline(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = TrimAndNormalize(line)
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// NormalizeCity title-cases each word so "  new   york" and "New York" compare equal.
func NormalizeCity(city string) string {
	p := Pipeline{
		TrimAndNormalize,
		strings.ToLower,
		titleWords,
	}
	return p.Apply(city)
}

func titleWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// NormalizePhone returns the E.164 form of phone. A region that yields a valid
// number wins; otherwise the first successful parse is formatted and validity
// is left to the validator. Input that does not parse is returned trimmed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	var fallback *phonenumbers.PhoneNumber
	for _, region := range DefaultRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
		if fallback == nil {
			fallback = parsed
		}
	}
	if fallback != nil {
		return phonenumbers.Format(fallback, phonenumbers.E164)
	}
	return phone
}
