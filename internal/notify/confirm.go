package notify

import "context"

// ConfirmFunc asks the user a yes/no question and blocks until answered
type ConfirmFunc func(ctx context.Context, message string) bool

// AlertFunc shows a blocking alert
type AlertFunc func(message string)

type answerKey struct{}

// WithAnswer stores a pre-given confirmation answer in ctx. The HTTP surface
// uses it to answer the native dialog with a request parameter.
func WithAnswer(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, answerKey{}, yes)
}

// ContextConfirm answers with the value stored by WithAnswer and declines
// when none was given.
func ContextConfirm(ctx context.Context, _ string) bool {
	yes, _ := ctx.Value(answerKey{}).(bool)
	return yes
}

// Decline is a ConfirmFunc that always says no
func Decline(context.Context, string) bool { return false }
