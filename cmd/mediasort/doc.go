// Package main hosts the mediasort CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the planning pipeline over files in the
// download directory, applies plans to the library, and exposes maintenance
// commands for the performer alias store, the run journal, and configuration.
// Keep this package lean: the heavy lifting lives in internal packages and
// commands only parse flags and render results.
package main
