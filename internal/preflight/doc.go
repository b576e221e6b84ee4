// Package preflight provides filesystem readiness checks run before a
// preparation pipeline touches any data.
//
// These checks run in two contexts:
//   - The preparer calls RunAll before loading and aborts when any check
//     fails, so a bad path never produces partial output.
//   - The CLI "langprep preflight" command prints every result as a table.
package preflight
