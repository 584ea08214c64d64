// Package testutil contains fakes shared across test packages: a scripted
// completer that replays canned outcomes and records the turns it was called
// with, a deterministic length-based token estimator, and a configurable fake
// plugin. They are not intended for production usage.
package testutil
