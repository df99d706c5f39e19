package config

// Version is the gigadmin binary version.
// Set at build time via: -ldflags "-X github.com/gigboard/gigadmin/internal/config.Version=<tag>"
var Version = "dev"
