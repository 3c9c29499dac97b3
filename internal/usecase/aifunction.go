package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"code-agent/internal/domain"
	"code-agent/internal/integrations/openai"
)

// LLMClient is the gateway surface consumed by the function caller.
// *openai.Client satisfies this interface.
type LLMClient interface {
	ChatCompletion(ctx context.Context, messages []domain.ChatMessage, opts openai.ChatOptions) (string, error)
}

// FunctionCaller asks a language model to act as a described function and
// return only its result. The returned text is not validated against the
// function's intended semantics; the contract is only as strong as the model.
type FunctionCaller struct {
	llm          LLMClient
	defaultModel string
}

// CallInput describes one natural-language function invocation.
type CallInput struct {
	// Function is the source text of the function the model should emulate.
	Function string
	// Args are the call arguments, rendered as text and joined with ", ".
	Args []any
	// Description explains what the function does.
	Description string
	// Model overrides the default (smart) model when non-empty.
	Model string
}

// NewFunctionCaller creates a FunctionCaller. defaultModel is used whenever
// CallInput.Model is empty.
func NewFunctionCaller(llm LLMClient, defaultModel string) (*FunctionCaller, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(defaultModel) == "" {
		return nil, errors.New("usecase: default model must not be empty")
	}
	return &FunctionCaller{llm: llm, defaultModel: defaultModel}, nil
}

// CallAIFunction formats the two-message conversation and delegates to the
// chat completion gateway with temperature fixed at 0.
func (f *FunctionCaller) CallAIFunction(ctx context.Context, in CallInput) (string, error) {
	if strings.TrimSpace(in.Function) == "" {
		return "", errors.New("usecase: function source must not be empty")
	}

	model := in.Model
	if model == "" {
		model = f.defaultModel
	}

	messages := []domain.ChatMessage{
		{
			Role: domain.RoleSystem,
			Content: fmt.Sprintf(
				"You are now the following function: ```# %s\n%s```\n\nOnly respond with your `return` value.",
				in.Description, in.Function,
			),
		},
		{
			Role:    domain.RoleUser,
			Content: renderArgs(in.Args),
		},
	}

	zero := 0.0
	return f.llm.ChatCompletion(ctx, messages, openai.ChatOptions{
		Model:       model,
		Temperature: &zero,
	})
}

// renderArgs converts each argument to text, nil values to the literal
// "None", and joins the results with ", ".
func renderArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == nil {
			parts[i] = "None"
			continue
		}
		parts[i] = fmt.Sprintf("%v", arg)
	}
	return strings.Join(parts, ", ")
}
