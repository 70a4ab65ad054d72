package media

import (
	"net/url"
	"strings"
)

// illegal characters in file names across the platforms we care about.
const illegalChars = `<>:"/\|?*`

// SanitizeFilename strips characters that are illegal in file paths and
// trims the trailing dots/spaces Windows rejects. An empty result falls back
// to "unnamed".
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.TrimRight(b.String(), ". ")
	if cleaned == "" {
		return "unnamed"
	}
	return cleaned
}

// DecodeDownloadName URL-decodes a download attribute value and sanitizes it
// into a usable filename. Malformed escapes leave the raw value in place.
func DecodeDownloadName(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return SanitizeFilename(decoded)
}
