// Package bundle stages prepared split files and a dataset card into a
// directory laid out for a hub upload, alongside a manifest.json recording
// each file's size and SHA-256 digest.
//
// Staging is local only. Every source file is checked before anything is
// copied so a missing file leaves the bundle directory untouched.
package bundle
