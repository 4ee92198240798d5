// Package version carries the build metadata reported by the infra
// endpoint. Release builds overwrite the defaults with ldflags:
//
//	go build -ldflags "-X github.com/marksync/marks/internal/version.Version=v0.2.0 \
//	  -X github.com/marksync/marks/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)
