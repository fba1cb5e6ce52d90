// Package config manages user-level settings stored at ~/.sentra/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the update repository URL and the HTTP timeout.
package config
