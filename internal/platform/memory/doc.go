// Package memory provides in-process implementations of the store
// interfaces. Data lives in maps guarded by a single mutex and is lost when
// the process exits; it backs tests and the "memory" database driver.
package memory
