// Package main hosts the langprep CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pipeline
// runs, run history queries, bundle staging, and configuration scaffolding.
// It centralizes configuration resolution and logger setup so subcommands
// can focus on presenting results.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through dedicated commands or flags.
package main
