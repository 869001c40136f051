// Package server exposes the lyric pipeline over HTTP using echo.
//
// Uploads land in a per-request staging workspace that is released when the
// handler returns, whatever the outcome. Errors carry a services marker and
// are mapped to status codes in one place, the echo error handler.
package server
