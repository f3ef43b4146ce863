// Package launcher attaches to or starts system containers through the
// runtime tool.
//
// Per container there are exactly two states: a service is running, or it
// is not. A running container is joined with the runtime's exec subcommand,
// attaching the caller's streams (through a pseudo-terminal when stdin is
// interactive). A stopped container can only be started in the foreground
// with the runtime's run subcommand, driven entirely by the config.json
// stored in its checkout; caller-supplied exec arguments are deliberately
// ignored on that path. There is no direct path from stopped to an attached
// session.
package launcher
