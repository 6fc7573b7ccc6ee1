// Package buildinfo provides build information for myke.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/myke/internal/infra/buildinfo.Version=v1.0.0"
//
// Binaries installed with "go install" fall back to the module version
// and VCS settings recorded by the Go toolchain.
package buildinfo
