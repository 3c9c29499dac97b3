package command

import (
	"context"
	"encoding/json"
	"fmt"

	"code-agent/internal/domain"
	"code-agent/internal/integrations/openai"
	"code-agent/internal/usecase"
)

// RepoCloner is the clone surface consumed by the clone command.
// *gitops.Cloner satisfies this interface.
type RepoCloner interface {
	Clone(ctx context.Context, repoURL, clonePath string) (string, error)
}

// LLMGateway is the model-serving surface consumed by the chat and embedding
// commands. *openai.Client satisfies this interface.
type LLMGateway interface {
	ChatCompletion(ctx context.Context, messages []domain.ChatMessage, opts openai.ChatOptions) (string, error)
	CreateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// FunctionCaller is the natural-language function surface consumed by the
// call_ai_function command. *usecase.FunctionCaller satisfies this interface.
type FunctionCaller interface {
	CallAIFunction(ctx context.Context, in usecase.CallInput) (string, error)
}

type cloneArgs struct {
	RepositoryURL string `json:"repository_url"`
	ClonePath     string `json:"clone_path"`
}

// CloneRepository builds the clone command. Every underlying fault is
// converted into a returned string prefixed "Error:" rather than propagated;
// the caller sees text either way.
func CloneRepository(cloner RepoCloner) Command {
	return Command{
		Name:        "clone_repository",
		Description: "Clone a GitHub repository locally",
		Signature:   `"repository_url": "<repository_url>", "clone_path": "<clone_path>"`,
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in cloneArgs
			if err := json.Unmarshal(args, &in); err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			result, err := cloner.Clone(ctx, in.RepositoryURL, in.ClonePath)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return result, nil
		},
	}
}

type chatArgs struct {
	Messages    []domain.ChatMessage `json:"messages"`
	Model       string               `json:"model"`
	Temperature *float64             `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

// ChatCompletion builds the chat command. Gateway faults propagate to the
// caller, unlike the clone command's soft text results.
func ChatCompletion(gw LLMGateway) Command {
	return Command{
		Name:        "chat_completion",
		Description: "Send an ordered conversation to the language model",
		Signature:   `"messages": [{"role": "...", "content": "..."}], "model": "<optional>"`,
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in chatArgs
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("command: decode chat_completion args: %w", err)
			}
			return gw.ChatCompletion(ctx, in.Messages, openai.ChatOptions{
				Model:       in.Model,
				Temperature: in.Temperature,
				MaxTokens:   in.MaxTokens,
			})
		},
	}
}

type callFunctionArgs struct {
	Function    string `json:"function"`
	Args        []any  `json:"args"`
	Description string `json:"description"`
	Model       string `json:"model"`
}

// CallAIFunction builds the natural-language function command.
func CallAIFunction(fc FunctionCaller) Command {
	return Command{
		Name:        "call_ai_function",
		Description: "Ask the model to act as the described function and return its result",
		Signature:   `"function": "<source>", "args": [...], "description": "<what it does>"`,
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in callFunctionArgs
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("command: decode call_ai_function args: %w", err)
			}
			return fc.CallAIFunction(ctx, usecase.CallInput{
				Function:    in.Function,
				Args:        in.Args,
				Description: in.Description,
				Model:       in.Model,
			})
		},
	}
}

type embedArgs struct {
	Text string `json:"text"`
}

// CreateEmbedding builds the embedding command. The vector is rendered as a
// JSON array since command results are text.
func CreateEmbedding(gw LLMGateway) Command {
	return Command{
		Name:        "create_embedding",
		Description: "Return the embedding vector for the given text",
		Signature:   `"text": "<text>"`,
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in embedArgs
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("command: decode create_embedding args: %w", err)
			}
			vec, err := gw.CreateEmbedding(ctx, in.Text)
			if err != nil {
				return "", err
			}
			out, err := json.Marshal(vec)
			if err != nil {
				return "", fmt.Errorf("command: encode embedding: %w", err)
			}
			return string(out), nil
		},
	}
}
