// Package deps checks the dependency advisories an instance manifest
// declares against the local Python environment. The checker is advisory
// only: it tells the operator what is missing or too old and how to fix
// it, but never installs anything itself.
package deps
