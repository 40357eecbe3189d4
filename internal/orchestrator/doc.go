// Package orchestrator turns a configuration and a profile into a graph of
// build steps and runs it.
//
// The graph for a profile is fixed: clean precedes every step that writes
// output, dev entry-template rendering waits for both script bundles, and
// with lint.blocking set lint gates app script bundling. The orchestrator
// keeps the manifests returned by the latest dev bundling run so watch
// reruns of entry-template rendering see the current script lists.
package orchestrator
