// Package server exposes the trigger boundary over HTTP. One POST to
// /events is one relay invocation; the hosting environment may dispatch
// several in parallel.
package server
