package middleware

import "context"

type nonceKey struct{}

// WithNonce stores the request nonce in ctx.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey{}, nonce)
}

// NonceFromContext returns the nonce stored by SecureHeaders, or "".
func NonceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}
