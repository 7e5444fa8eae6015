package dashboard

import "context"

type viewerContextKey struct{}

// ContextWithViewer stores the resolved caller on the provided context.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, viewerContextKey{}, viewer)
}

// ViewerFromContext extracts the caller, if a transport stored one.
func ViewerFromContext(ctx context.Context) (ViewerContext, bool) {
	if ctx == nil {
		return ViewerContext{}, false
	}
	viewer, ok := ctx.Value(viewerContextKey{}).(ViewerContext)
	return viewer, ok
}

// IsAdmin reports whether ctx carries an authenticated administrator.
func IsAdmin(ctx context.Context) bool {
	viewer, ok := ViewerFromContext(ctx)
	return ok && viewer.Admin
}
