// Package manifest reads and transforms per-image install manifests.
//
// A manifest is the JSON document shipped in an image's exports directory.
// Known directives get named fields on [Manifest]; everything else stays
// reachable through [Manifest.Attribute] with an explicit default, so the
// defaults live at the call site instead of being scattered lookups.
//
// Rename directives may point at $variable placeholders supplied at install
// time. Unlike the config templater, resolution here is strict: an
// unresolved variable aborts the install. Rename targets decide where files
// land on the host, and a literal "$var" path is never what the operator
// meant.
package manifest
