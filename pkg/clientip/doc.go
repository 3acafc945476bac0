// Package clientip extracts the originating client IP from an HTTP
// request, preferring proxy-set headers over the raw remote address.
// The session layer records the result on newly created sessions.
package clientip
