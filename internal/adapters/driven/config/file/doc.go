// Package file provides the TOML configuration store.
//
// Non-secret settings live in ~/.stockwatch/config.toml by default.
// Notification secrets are read from the environment, never from this file.
package file
