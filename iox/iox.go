// Package iox provides small cleanup helpers shared by the HTTP
// surfaces.
package iox

import "io"

// DiscardClose closes c, dropping the error. For defers where a close
// failure is unactionable:
//
//	defer iox.DiscardClose(body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// DrainClose reads r to EOF before closing it. Draining an HTTP
// response body lets the transport reuse the connection.
func DrainClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	_ = r.Close()
}

// CloseFunc wraps c.Close for t.Cleanup registration and deferred
// shutdown hooks:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}
