// Package manifest defines the documents published by a Sentra update
// repository: the repository manifest (repoInfo.json, the index of managed
// instances) and the per-instance manifest (instanceInfo.json, the versioned
// file-digest table). Parsing is all-or-nothing: documents are validated
// against embedded JSON Schemas before unmarshaling, so a malformed document
// is never partially accepted.
package manifest
