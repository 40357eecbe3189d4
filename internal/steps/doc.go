// Package steps implements the individual build steps.
//
// Every step takes the invocation's pipeline.BuildContext by value and
// returns what it produced. Steps never share state: the bundling steps
// return script manifests and entry-template rendering receives them as an
// argument. Ordering between steps is the orchestrator's concern.
package steps
