// Package rpc implements the typed procedure registry and the dispatch
// boundary: input validation, authorization, invocation, and the result
// envelope shared by the web and native clients.
package rpc

import (
	"net/http"

	"github.com/nitinmogalapalli/stackify/internal/app"
	"github.com/nitinmogalapalli/stackify/internal/domain"
)

// Context is the per-request execution context handed to every procedure.
// It is built once per request, owned exclusively by that request, and
// discarded when the request completes. Identity is immutable for the
// request's lifetime.
type Context struct {
	Identity domain.Identity
	Svc      *app.Service
	// Request carries request-scoped metadata (headers, raw request).
	Request *http.Request
}

// NewContext assembles the execution context for one request. Missing or
// invalid identity is a valid state, never an error: procedures perform
// their own authorization against Identity.
func NewContext(identity domain.Identity, svc *app.Service, req *http.Request) *Context {
	return &Context{
		Identity: identity,
		Svc:      svc,
		Request:  req,
	}
}
