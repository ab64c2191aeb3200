package api

// Version information - these will be set at build time via ldflags
var (
	ServerVersion = "dev"
	GitCommit     = "unknown"
	BuildTime     = "unknown"
)
