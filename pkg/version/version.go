package version

// Version is replaced at build time with -ldflags "-X github.com/c9s/pythia/pkg/version.Version=..."
var Version = "v0.1.0-dev"

const AppName = "pythia"
