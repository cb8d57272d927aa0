package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates the observer handlers (model, prompt) into one
// callbacks.Handler attached per invocation.
func NewAllCallbacks() einocb.Handler {
	promptHandler := newPromptHandler()
	modelHandler := newModelHandler()

	return callbackHelper.NewHandlerHelper().
		ChatModel(modelHandler).
		Prompt(promptHandler).
		Handler()
}
