package version

// Version is the current version of the fancall CLI and relay server.
// This value can be overridden at build time using:
//   go build -ldflags="-X 'github.com/Pulgas25/activacel-fans-full/internal/version.Version=v1.0.0'"
var Version = "dev"
