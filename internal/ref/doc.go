// Package ref translates human image references into storage refs.
//
// An image reference like "registry.example.com/ns/app:1.0" cannot be used
// directly as an ostree branch name: tags contain ':', which is reserved,
// and a raw name could collide with a content hash. [Encode] normalizes the
// reference (defaulting the tag to "latest"), escapes reserved bytes, and
// prefixes the result so it can never satisfy [IsHex].
//
// Transport prefixes ("http:", "https:", "oci:") select how the image is
// fetched and are parsed once at the boundary via [ParseTransport]; the
// rest of the pipeline only ever sees the bare image reference.
package ref
