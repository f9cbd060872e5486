// Package http contains the HTTP transport layer: the HTML dashboard
// handler, the JSON analysis API, health and metrics endpoints, and the
// router that assembles them behind the shared middleware chain.
package http
