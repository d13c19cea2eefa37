// Package main hosts the plexmeta CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the provider
// registry and identity cache from it, and hands them to the resolve and
// mapper packages. Commands only format results; keep new behavior in the
// internal packages and surface it here through commands or flags.
package main
