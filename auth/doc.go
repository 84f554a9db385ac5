// Package auth manages the client's session against the backend's
// authentication endpoints.
//
// Service wraps login, registration and logout around a client.Client and
// its token store. Identity decodes the stored access token into a
// principal with roles and permissions, and SessionChecker reports the
// session state as a health check.
package auth
