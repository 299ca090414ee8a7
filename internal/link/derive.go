package link

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// DeriveName extracts a display name from a URL: the registrable domain
// label (subdomains and public suffix stripped), capitalized. For hosts
// without a recognizable public suffix (IP literals, localhost) the
// whole host is used. Returns "" when no host can be found.
func DeriveName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := parsed.Hostname()
	if host == "" && !strings.Contains(rawURL, "://") {
		// Bare "example.com/path" parses as a relative path
		parsed, err = url.Parse("https://" + rawURL)
		if err != nil {
			return ""
		}
		host = parsed.Hostname()
	}
	if host == "" {
		return ""
	}

	label := strings.ToLower(host)
	if etldPlusOne, err := publicsuffix.EffectiveTLDPlusOne(label); err == nil {
		if dot := strings.IndexByte(etldPlusOne, '.'); dot > 0 {
			label = etldPlusOne[:dot]
		} else {
			label = etldPlusOne
		}
	}

	return capitalize(label)
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + s[size:]
}
