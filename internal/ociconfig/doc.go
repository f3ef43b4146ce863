// Package ociconfig produces the runtime config.json for a checkout.
//
// Three sources are tried in strict priority order: a fixed config shipped
// in the image's exports directory (copied verbatim), a config template
// with $variable placeholders (substituted leniently; unresolved
// placeholders stay literal), and finally the runtime tool's own spec
// generator. Whichever source wins, the destination ends up with exactly
// one config.json whose root.path points at the rootfs subdirectory.
//
// The lenient template substitution is deliberate and differs from the
// strict resolution applied to manifest rename values; shipped image
// templates rely on unresolved placeholders surviving verbatim.
package ociconfig
