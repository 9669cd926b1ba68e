// Package middleware decodes JSON request bodies into relaywire records at
// the HTTP boundary and hands them to handlers through the request context.
package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/reoring/relaywire/codec"
)

// DefaultMaxBodyBytes bounds request bodies read by DecodeBody.
const DefaultMaxBodyBytes int64 = 10 << 20

// ctxKeyDecoded is a typed context key for storing a decoded T.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches v to the context.
func ContextWithDecoded[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves the value stored by DecodeBody.
func DecodedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(T)
	return v, ok
}

// DecodeBody reads at most maxBytes of the request body (DefaultMaxBodyBytes
// when maxBytes <= 0), decodes it with c and calls next with the value in
// the context. Oversized bodies get 413; undecodable ones get 400 with the
// path-qualified decode error as text.
func DecodeBody[T any](c codec.Codec[T], maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
			if err != nil {
				http.Error(w, "Failed to read the request body.", http.StatusBadRequest)
				return
			}
			if int64(len(body)) > maxBytes {
				http.Error(w, fmt.Sprintf("Request is too large (max. allowed content length: %d)", maxBytes),
					http.StatusRequestEntityTooLarge)
				return
			}
			v, err := c.Unmarshal(body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
		})
	}
}
