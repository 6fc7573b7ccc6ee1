// Package fetch downloads remote Mykefiles and documents over HTTP.
//
//   - client.go: HTTP client with user agent and optional token auth
//   - download.go: atomic file downloads with progress reporting
package fetch
