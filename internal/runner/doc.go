// Package runner executes the commands produced by shell tasks.
//
// A domain.Script runs either through a shell ("sh -c <script>") or as a
// plain argument vector. The runner applies the environment overrides,
// working directory, timeout and output capture of domain.ShellOptions and
// turns non-zero exits into *domain.ProcessError when Check is set.
//
// Sh, ShStdout and ShStdoutLines are shorthands used by Mykefiles.
package runner
