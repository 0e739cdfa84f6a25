// Command assistant-core is the process entrypoint: it wires the
// in-process api.Server to a command surface, following the teacher's
// cli package layout (one Command per subcommand, registered on a root
// urfave/cli/v3 command in main).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlvinPlayz23/void-core/api"
	"github.com/AlvinPlayz23/void-core/config"
	"github.com/AlvinPlayz23/void-core/logger"
	"github.com/AlvinPlayz23/void-core/secretmanager"
	"github.com/AlvinPlayz23/void-core/tools"
	"github.com/urfave/cli/v3"
)

// version is set at build time via -ldflags "-X main.version=...";
// left as a placeholder default for local/dev builds.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:  "assistant-core",
		Usage: "IDE coding assistant core: agent loop, tool sandbox, and session service",
		Commands: []*cli.Command{
			newServeCommand(),
			newTestConnectionCommand(),
			newInitCommand(),
			newVersionCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Get().Error().Err(err).Msg("assistant-core exited with error")
		os.Exit(1)
	}
}

func newVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the assistant-core version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Println(version)
			return nil
		},
	}
}

// newServeCommand starts the in-process agent/session server and blocks
// until a termination signal arrives. The RPC transport that would front
// this server (a frame protocol over stdio, a socket, whatever the IDE
// host speaks) is a peer-subsystem concern per spec §1 and is not built
// here; serve exists so the core can be run as a long-lived process that
// an embedder attaches a transport to.
func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the assistant core as a long-lived process",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to a YAML config file", Value: "assistant-core.yaml"},
			&cli.StringFlag{Name: "project-config", Usage: "Path to a per-project TOML config file", Value: "assistant-core.toml"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			log := logger.Get()
			log.Info().
				Str("log_level", cfg.LogLevel).
				Int("default_max_iterations", cfg.DefaultMaxIterations).
				Msg("assistant-core starting")

			policy := tools.SensitivePathPolicy{ExtraDenyPatterns: cfg.ExtraSensitivePaths}
			if projectCfg, err := config.ReadStarterProjectConfig(cmd.String("project-config")); err == nil {
				policy.AllowPaths = projectCfg.AllowSensitive
				log.Info().Strs("allow_sensitive", projectCfg.AllowSensitive).Msg("loaded per-project config")
			}

			srv := api.NewServerWithConfig(cfg, policy)
			_ = srv

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info().Msg("assistant-core ready")
			<-sigCtx.Done()
			log.Info().Msg("assistant-core shutting down")
			return nil
		},
	}
}

// newTestConnectionCommand exercises api.Server.TestConnection against a
// provider from CLI-supplied or environment-sourced credentials, useful
// for verifying a provider/model/base-url combination without driving a
// full IDE integration.
func newTestConnectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "test-connection",
		Usage: "Send a one-shot request to verify provider credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Value: "openai", Usage: "Secret name prefix, e.g. openai, anthropic"},
			&cli.StringFlag{Name: "base-url", Required: true, Usage: "Provider base URL"},
			&cli.StringFlag{Name: "model", Required: true, Usage: "Model id"},
			&cli.StringFlag{Name: "api-key", Usage: "API key; falls back to VOIDCORE_<PROVIDER>_API_KEY"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			apiKey := cmd.String("api-key")
			if apiKey == "" {
				sm := secretmanager.EnvSecretManager{}
				secretName := strings.ToUpper(cmd.String("provider")) + "_API_KEY"
				key, err := sm.GetSecret(secretName)
				if err != nil {
					return fmt.Errorf("no --api-key given and %w", err)
				}
				apiKey = key
			}

			srv := api.NewServer()
			reply, err := srv.TestConnection(ctx, api.Credentials{
				APIKey:  apiKey,
				BaseURL: cmd.String("base-url"),
				ModelID: cmd.String("model"),
			})
			if err != nil {
				return fmt.Errorf("test-connection failed: %w", err)
			}

			fmt.Println(reply)
			return nil
		},
	}
}

// newInitCommand writes a starter per-project TOML config file, the
// init-time analogue of the teacher's repo-config bootstrap.
func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write a starter project config file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project-root", Value: ".", Usage: "Root directory the tool sandbox is confined to"},
			&cli.StringFlag{Name: "default-model", Value: "gpt-4o-mini", Usage: "Default model id for this project"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				path = "assistant-core.toml"
			}

			err := config.WriteStarterProjectConfig(path, config.StarterProjectConfig{
				ProjectRoot:  cmd.String("project-root"),
				DefaultModel: cmd.String("default-model"),
			})
			if err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}
