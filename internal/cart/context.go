package cart

import "context"

type ctxKey struct{}

// WithStore scopes s to ctx. It is called once per request at the session root.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store scoped to ctx. Reading a cart outside a
// session scope is a wiring bug, so it panics instead of returning nil.
func FromContext(ctx context.Context) *Store {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || s == nil {
		panic("cart: FromContext called outside of a session scope")
	}
	return s
}
