// Package outputfmt scrubs provider error text before it reaches logs or
// the terminal.
package outputfmt

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[redacted]"

var (
	urlInTextRE     = regexp.MustCompile(`https?://[^\s"'<>]+`)
	bearerRE        = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`)
	providerKeyRE   = regexp.MustCompile(`\b(?:sk-|AIza)[-_A-Za-z0-9]{12,}`)
	sensitiveQueryK = []string{"apikey", "authorization", "token", "secret", "password", "cookie"}
)

// FormatErrorForDisplay returns err's text with URL hosts dropped and
// credentials redacted.
func FormatErrorForDisplay(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeErrorText(err.Error())
}

func SanitizeErrorText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	out := urlInTextRE.ReplaceAllStringFunc(raw, stripURLHost)
	out = bearerRE.ReplaceAllString(out, "Bearer "+redacted)
	return providerKeyRE.ReplaceAllString(out, redacted)
}

// stripURLHost keeps path, redacted query and fragment of an absolute URL.
func stripURLHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	out := u.EscapedPath()
	if out == "" {
		out = "/"
	}
	if q := u.Query(); len(q) > 0 {
		for k := range q {
			if sensitiveQueryKey(k) {
				q.Set(k, redacted)
			}
		}
		out += "?" + q.Encode()
	}
	if frag := u.EscapedFragment(); frag != "" {
		out += "#" + frag
	}
	return out
}

func sensitiveQueryKey(key string) bool {
	n := strings.ToLower(strings.TrimSpace(key))
	n = strings.NewReplacer("-", "", "_", "").Replace(n)
	if n == "" {
		return false
	}
	if n == "key" {
		return true
	}
	for _, s := range sensitiveQueryK {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}
