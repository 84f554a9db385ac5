// Package client issues authenticated requests against a REST backend.
//
// Each verb call runs the same pipeline:
//
//  1. Resolve per-call options over the client Config and build the
//     request (JSON body, query params, X-Request-ID).
//  2. GET only: serve a fresh cached response if caching is enabled.
//  3. Dispatch under the retry policy. Every attempt reads the access
//     token from the token store and sends it as a bearer credential.
//  4. On a 401, refresh the access token once (single-flight across all
//     in-flight requests) and replay the request once with the new token.
//     A failed refresh clears the stored tokens, fires OnAuthError and
//     returns the 401. A 401 on the replay is returned as is.
//  5. GET only: cache the successful body.
//
// A Client is safe for concurrent use.
//
//	c, err := client.New(client.DefaultConfig("https://api.example.com"))
//	items, err := client.DecodeJSON[[]Item](c.Get(ctx, "/items/", client.WithParam("page", 1)))
package client
