package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"code-agent/handler"
	"code-agent/internal/command"
	"code-agent/internal/config"
	"code-agent/internal/gitops"
	"code-agent/internal/integrations/openai"
	"code-agent/internal/integrations/paramstore"
	"code-agent/internal/usecase"
)

const usage = `code-agent runs agent commands against a configured model provider.

Usage:
  code-agent run <command> [json-args]
  code-agent commands

Commands:
  run       Execute a registered command with JSON arguments
  commands  List the commands offered under the current configuration

Flags:
  -h, --help  Show this help message`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "shutdown requested, exiting")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return printUsage()
	}
	switch args[0] {
	case "run", "commands":
	case "help", "-h", "--help":
		return printUsage()
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.DebugMode)
	slog.SetDefault(logger)

	if cfg.ParamPrefix != "" {
		if err := resolveSecrets(ctx, cfg); err != nil {
			return err
		}
	}

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	if args[0] == "commands" {
		return listCommands(registry)
	}
	return runCommand(ctx, registry, args[1:])
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveSecrets overwrites the credential fields with values fetched from
// SSM Parameter Store under cfg.ParamPrefix. The GitHub key stays optional;
// a missing parameter just leaves the clone command unregistered later.
func resolveSecrets(ctx context.Context, cfg *config.Config) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return err
	}

	prefix := strings.TrimRight(cfg.ParamPrefix, "/")

	apiKey, err := paramstore.Secret(ctx, ps, prefix+"/openai-api-key")
	if err != nil {
		return fmt.Errorf("resolve openai api key: %w", err)
	}
	cfg.OpenAIAPIKey = apiKey

	githubKey, err := paramstore.Secret(ctx, ps, prefix+"/github-api-key")
	switch {
	case err == nil:
		cfg.GitHubAPIKey = githubKey
	case errors.Is(err, paramstore.ErrNotFound):
	default:
		return fmt.Errorf("resolve github api key: %w", err)
	}
	return nil
}

func buildRegistry(cfg *config.Config, logger *slog.Logger) (*command.Registry, error) {
	gw, err := openai.NewClient(cfg, openai.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	fc, err := usecase.NewFunctionCaller(gw, cfg.SmartLLMModel)
	if err != nil {
		return nil, err
	}

	registry := command.NewRegistry()
	for _, cmd := range []command.Command{
		command.ChatCompletion(gw),
		command.CallAIFunction(fc),
		command.CreateEmbedding(gw),
	} {
		if err := registry.Register(cmd); err != nil {
			return nil, err
		}
	}

	// The clone command is only offered when both GitHub credentials are
	// configured; otherwise it is absent rather than failing at call time.
	if cfg.GitHubConfigured() {
		cloner, err := gitops.NewCloner(gitops.Credentials{
			Username: cfg.GitHubUsername,
			APIKey:   cfg.GitHubAPIKey,
		}, gitops.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := registry.Register(command.CloneRepository(cloner)); err != nil {
			return nil, err
		}
	} else {
		logger.Info("clone_repository not offered", "reason", "configure github_username and github_api_key")
	}

	return registry, nil
}

func runCommand(ctx context.Context, registry *command.Registry, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("run requires a command name\n\n%s", usage)
	}

	h, err := handler.NewHandler(registry)
	if err != nil {
		return err
	}

	req := handler.Request{Command: args[0]}
	if len(args) > 1 {
		req.Args = []byte(args[1])
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(resp.Result)
	return nil
}

func listCommands(registry *command.Registry) error {
	for _, cmd := range registry.List() {
		fmt.Printf("%s: %s, args: %s\n", cmd.Name, cmd.Description, cmd.Signature)
	}
	return nil
}

func printUsage() error {
	fmt.Println(strings.TrimSpace(usage))
	return nil
}
