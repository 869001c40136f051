// Package main hosts the lyricsync CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes each stage of the lyric pipeline on
// its own (align, translate, render, embed, inspect), the combined generate
// flow, the HTTP server, run history, and configuration scaffolding. It
// centralizes configuration resolution and logger setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
