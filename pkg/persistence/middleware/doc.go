// Package middleware decorates session stores: sealing sessions at rest with
// AES-GCM and bounding the history kept per session.
package middleware
