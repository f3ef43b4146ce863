package ref

import "strings"

// How an image should be fetched from its registry.
type Transport int

const (
	// No explicit transport; registry defaults apply.
	TransportDefault Transport = iota

	// Plain HTTP; certificate checks are skipped.
	TransportInsecure

	// Explicit HTTPS.
	TransportSecure

	// OCI layout transport.
	TransportOCI
)

// Returns true when the transport skips TLS.
func (t Transport) Insecure() bool {
	return t == TransportInsecure
}

// String name of the transport, for logging.
func (t Transport) String() string {
	switch t {
	case TransportInsecure:
		return "http"
	case TransportSecure:
		return "https"
	case TransportOCI:
		return "oci"
	default:
		return "default"
	}
}

// Splits a transport prefix off an image URI.
//
// "http:" marks the registry insecure and is stripped; "https:" and "oci:"
// are stripped but keep the secure default. Anything else, including
// unknown prefixes, passes through unchanged as part of the image string.
func ParseTransport(uri string) (Transport, string) {
	switch {
	case strings.HasPrefix(uri, "http:"):
		return TransportInsecure, strings.TrimPrefix(uri, "http:")
	case strings.HasPrefix(uri, "https:"):
		return TransportSecure, strings.TrimPrefix(uri, "https:")
	case strings.HasPrefix(uri, "oci:"):
		return TransportOCI, strings.TrimPrefix(uri, "oci:")
	default:
		return TransportDefault, uri
	}
}
