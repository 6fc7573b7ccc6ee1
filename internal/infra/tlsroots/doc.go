// Package tlsroots builds the trusted root pool for HTTPS downloads.
//
//   - roots.go: system roots plus extra CA files or directories
//
// It backs the http.ca_file setting, for module servers behind a private
// certificate authority.
package tlsroots
