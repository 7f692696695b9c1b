package nodes

import "context"

const (
	NodeInputConverter    = "InputConverter"
	NodeLabelEvaluator    = "LabelEvaluator"
	NodeResponseAssembler = "ResponseAssembler"
	NodeResponseChatModel = "ResponseChatModel"
)

type runIDKey struct{}

// WithRunID tags ctx with the id of one graph invocation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the invocation id set by WithRunID, or "".
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
