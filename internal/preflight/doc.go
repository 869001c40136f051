// Package preflight provides readiness checks for the external binaries,
// services, and filesystem paths that lyricsync depends on.
//
// These checks run in two contexts:
//   - The serve command calls RunAll before binding the listener and logs
//     every failed check so a misconfigured host is visible at startup.
//   - The CLI "lyricsync status" command uses the individual check functions
//     (CheckLLMFromConfig, CheckRunLog, CheckSystemDeps) to display health.
package preflight
