// Package preflight provides readiness checks for the filesystem paths and
// external tools stanza depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs failures without refusing
//     to serve; timing edits never touch the external tools.
//   - The CLI "config validate" command and the /api/status endpoint report
//     the same results to operators.
//
// The pause detector is optional: uploads still succeed without hints.
package preflight
