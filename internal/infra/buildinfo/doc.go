// Package buildinfo exposes the version stamped into the binary.
//
//	go build -ldflags "-X github.com/yndnr/tokgate/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
