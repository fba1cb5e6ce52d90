// Package updater implements the update-reconciliation engine: diffing the
// published file-digest table against the local installation, preflighting
// filesystem permissions, downloading content through the repository's
// symlink-marker indirection, and applying the resulting plan. Every byte
// received from the network is verified against its published SHA-256
// digest before it is trusted, and again after it lands on disk.
package updater
