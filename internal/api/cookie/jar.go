package cookie

import (
	"net/http"
	"net/url"
	"strings"
)

// Jar is a parsed Cookie request header: cookie name to value.
type Jar map[string]string

// ParseJar parses one raw Cookie header value. Pairs are separated by ';',
// surrounding whitespace is trimmed and names and values are percent-decoded.
// Pairs without '=' are skipped; the first occurrence of a name wins.
func ParseJar(raw string) Jar {
	jar := make(Jar)
	jar.add(raw)
	return jar
}

// JarFromHeader parses every Cookie header in h into one Jar.
func JarFromHeader(h http.Header) Jar {
	jar := make(Jar)
	for _, raw := range h.Values("Cookie") {
		jar.add(raw)
	}
	return jar
}

// Get returns the value for name and whether it was present.
func (j Jar) Get(name string) (string, bool) {
	v, ok := j[name]
	return v, ok
}

func (j Jar) add(raw string) {
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = unescape(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, seen := j[name]; seen {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.TrimPrefix(strings.TrimSuffix(value, `"`), `"`)
		j[name] = unescape(value)
	}
}

// unescape percent-decodes s, leaving it untouched when it is not valid
// percent-encoding. '+' is kept literally.
func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
