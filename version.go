package carepath

// Version is overridden at build time with -ldflags "-X github.com/aretw0/carepath.Version=...".
var Version = "dev"
