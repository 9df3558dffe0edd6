// Package httputil provides shared HTTP response/request utilities for handlers.
//
// Handlers write through these helpers so every endpoint answers with the
// same JSON envelope and failures are logged in one place.
package httputil
