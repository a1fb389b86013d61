package version

// Version is the current version of the remotix binary.
// Override at build time with:
//
//	go build -ldflags="-X 'github.com/remotix/remotix/internal/version.Version=v1.0.0'"
var Version = "dev"
