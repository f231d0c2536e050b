package types

// Version is the canonical project version, shared by the CLI and the
// stream decoder's user agent.
const Version = "0.3.0"
