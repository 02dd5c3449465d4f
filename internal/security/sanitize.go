package security

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptStyleTags = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)>`)
	htmlTags        = regexp.MustCompile(`(?s)<[^>]*>`)
	strayOpenTag    = regexp.MustCompile(`<[^>]*$`)
	percentOctets   = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespaceRun   = regexp.MustCompile(`[\s]+`)

	emailLocalInvalid = regexp.MustCompile("[^a-zA-Z0-9!#$%&'*+/=?^_`{|}~.-]")
	emailLabelInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// SanitizeText strips markup, control characters, percent-encoded octets and
// escaping backslashes, and collapses whitespace. It never fails.
func SanitizeText(input string) string {
	s := strings.ToValidUTF8(input, "")
	s = unslash(s)
	s = scriptStyleTags.ReplaceAllString(s, "")
	s = htmlTags.ReplaceAllString(s, "")
	s = strayOpenTag.ReplaceAllString(s, "")
	s = percentOctets.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = whitespaceRun.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// SanitizeEmail drops characters that cannot appear in an address and lowercases it.
// Returns "" when no plausible address remains.
func SanitizeEmail(input string) string {
	s := strings.TrimSpace(unslash(strings.ToValidUTF8(input, "")))
	s = strings.ToLower(s)

	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 {
		return ""
	}

	local := emailLocalInvalid.ReplaceAllString(s[:at], "")
	if local == "" {
		return ""
	}

	domain := strings.Trim(s[at+1:], " \t\n\r\x00\x0B.")
	var labels []string
	for _, label := range strings.Split(domain, ".") {
		label = strings.Trim(label, " \t\n\r\x00\x0B-")
		label = emailLabelInvalid.ReplaceAllString(label, "")
		if label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) < 2 {
		return ""
	}

	return local + "@" + strings.Join(labels, ".")
}

// unslash removes one level of backslash escaping.
func unslash(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
