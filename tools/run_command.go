package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"

	"al.essio.dev/pkg/shellescape"
	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/AlvinPlayz23/void-core/logger"
	"github.com/invopop/jsonschema"
)

type RunCommandParams struct {
	Command string `json:"command" jsonschema:"description=The shell command to execute in the project root."`
}

type runCommandResult struct {
	Success  bool   `json:"success"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

type RunCommandTool struct {
	Root string
}

func (t RunCommandTool) Name() string                  { return "run_command" }
func (t RunCommandTool) SchemaFormat() llm.SchemaFormat { return llm.SchemaFormatJSONSchema }

func (t RunCommandTool) Description() string {
	return "Runs a shell command with its working directory pinned to the project root. A non-zero exit code is reported, not treated as a tool failure."
}

func (t RunCommandTool) InputSchema() interface{} {
	return (&jsonschema.Reflector{DoNotReference: true}).Reflect(&RunCommandParams{})
}

func (t RunCommandTool) Run(ctx context.Context, input interface{}) (string, string, error) {
	params, err := decodeParams[RunCommandParams](input)
	if err != nil {
		return "", "", err
	}
	if params.Command == "" {
		return "", "", fmt.Errorf("command is required")
	}

	// Deliberately exec.Command, not exec.CommandContext: a disconnecting
	// RPC caller must not forcibly kill the child. run_command always
	// waits for it to exit on its own (spec §5).
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("powershell", "-Command", params.Command)
	} else {
		cmd = exec.Command("bash", "-c", params.Command)
	}
	cmd.Dir = t.Root

	logger.Get().Debug().Str("tool", t.Name()).Str("command", shellescape.Quote(params.Command)).Msg("running command")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return "", "", fmt.Errorf("tool: failed to spawn command: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	result := runCommandResult{
		Success:  true,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", "", fmt.Errorf("internal: failed to marshal run_command result: %w", err)
	}
	return string(out), string(out), nil
}
