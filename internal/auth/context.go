package auth

import "context"

type ctxKey string

const (
	ctxKeySub   ctxKey = "sub"
	ctxKeyToken ctxKey = "bearer"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySub).(string); ok {
		return v
	}
	return ""
}

func WithBearer(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, ctxKeyToken, tok)
}

// BearerFromContext returns the caller's raw bearer token. In online mode
// this is the platform access token the classroom client is built from.
func BearerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyToken).(string); ok {
		return v
	}
	return ""
}
