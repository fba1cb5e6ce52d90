// Package repo implements the HTTPS client for a Sentra update repository.
// It fetches and caches the repository manifest (repoInfo.json) and the
// manifest of the configured instance (<location>/instanceInfo.json), and
// tracks the newest version identity seen so that a late, out-of-order
// fetch can never regress the cached state.
package repo
