package ref

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

const (

	// Branch namespace for encoded image references. The prefix keeps
	// encoded refs apart from content hashes and other branch families.
	refPrefix = "ociimage/"

	// Tag applied when a reference carries none.
	defaultTag = "latest"
)

// Encodes an image reference as an ostree branch ref.
//
// The reference is normalized first: a missing tag becomes ":latest". Every
// byte outside [A-Za-z0-9.-] is escaped as "_XX" (uppercase hex), so ':'
// becomes "_3A" and '/' becomes "_2F". The "ociimage/" prefix guarantees
// the result is never a pure hex string, which is how content-addressed
// lookups are told apart from named refs.
func Encode(image string) string {
	return refPrefix + escape(normalizeTag(image))
}

// Appends the default tag when the reference has none.
//
// Well-formed references are normalized through the reference library so
// that tag detection is not confused by a registry port (e.g.
// "localhost:5000/img" has no tag). Strings the library rejects fall back
// to a plain suffix check, mirroring how loose references were always
// accepted here.
func normalizeTag(image string) string {
	named, err := reference.ParseNormalizedNamed(image)
	if err == nil {
		if _, tagged := named.(reference.Tagged); !tagged {
			if _, canonical := named.(reference.Canonical); !canonical {
				return image + ":" + defaultTag
			}
		}
		return image
	}

	if i := strings.LastIndexByte(image, ':'); i >= 0 && !strings.Contains(image[i:], "/") {
		return image
	}
	return image + ":" + defaultTag
}

// Escapes every byte outside the ostree-safe set as "_XX".
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	return b.String()
}

// Reports whether s looks like a raw content hash.
//
// Refs that are pure lowercase hex are reserved for content-addressed
// lookups; encoded image refs must never satisfy this predicate.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
