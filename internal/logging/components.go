package logging

// Component names for named loggers.
const (
	ComponentEngine   = "engine"
	ComponentLocal    = "local-store"
	ComponentRemote   = "remote"
	ComponentSelector = "mode-selector"
	ComponentServer   = "api-server"
	ComponentCLI      = "cli"
)
