// Package workspace manages the project directory a build reads from and the
// output tree it writes to.
//
// All configured paths are relative to the project root. The output root
// (dist.path) is owned by the build: Clean removes it entirely and every
// profile directory lives beneath it.
package workspace
