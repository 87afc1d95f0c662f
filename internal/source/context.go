package source

import "context"

type loaderCtxKey struct{}

// WithLoader stores a Loader in the context.
func WithLoader(ctx context.Context, l *Loader) context.Context {
	return context.WithValue(ctx, loaderCtxKey{}, l)
}

// LoaderFromContext retrieves the Loader from the context.
func LoaderFromContext(ctx context.Context) *Loader {
	if v := ctx.Value(loaderCtxKey{}); v != nil {
		if l, ok := v.(*Loader); ok {
			return l
		}
	}

	return nil
}
