// Package platform provides cross-platform filesystem permission helpers.
// On Unix systems it uses chmod and access(2) directly. On Windows, where
// POSIX permission bits do not apply, Chmod is a no-op and writability is
// approximated from the file attributes.
package platform
