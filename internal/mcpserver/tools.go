package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"tenvctl/internal/config"
	"tenvctl/internal/envspec"
	"tenvctl/internal/executor"
	"tenvctl/internal/runner"
)

// environmentSummary is the list-tool response entry.
type environmentSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Deps        []string `json:"deps,omitempty"`
	Commands    int      `json:"commands"`
	Default     bool     `json:"default"`
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("tenv_list_environments",
		mcp.WithDescription("List the test environments declared in the tenvctl configuration"),
	)
	s.mcp.AddTool(listTool, s.handleListEnvironments)

	runTool := mcp.NewTool("tenv_run_environment",
		mcp.WithDescription("Run a single test environment and return its result"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the environment to run"),
		),
		mcp.WithArray("posargs",
			mcp.Description("Positional arguments spliced into commands at {posargs}"),
		),
	)
	s.mcp.AddTool(runTool, s.handleRunEnvironment)

	validateTool := mcp.NewTool("tenv_validate_config",
		mcp.WithDescription("Validate the tenvctl configuration and report the effective environment list"),
	)
	s.mcp.AddTool(validateTool, s.handleValidateConfig)
}

func (s *Server) loadConfig() (config.Config, error) {
	return config.Load(s.configPath)
}

func (s *Server) handleListEnvironments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load configuration: %v", err)), nil
	}

	defaults := make(map[string]bool, len(cfg.Envlist))
	for _, name := range cfg.Envlist {
		defaults[name] = true
	}

	summaries := make([]environmentSummary, 0, len(cfg.Environments))
	for _, env := range cfg.Environments {
		resolved, err := envspec.Resolve(cfg, env.Name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		summaries = append(summaries, environmentSummary{
			Name:        env.Name,
			Description: resolved.Description,
			Deps:        resolved.Deps,
			Commands:    len(resolved.Commands),
			Default:     defaults[env.Name],
		})
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRunEnvironment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required argument: name"), nil
	}
	var posargs []string
	if raw, ok := args["posargs"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				posargs = append(posargs, s)
			}
		}
	}

	cfg, err := s.loadConfig()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load configuration: %v", err)), nil
	}

	resolved, err := envspec.Resolve(cfg, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The stdio transport owns stdout, so the run must not print anything;
	// the outcome travels in the tool result payload.
	exec := executor.NewRunner()
	r := runner.New(exec, runner.NewInstaller(exec), runner.NewNopReporter())
	result, err := r.Run(ctx, []envspec.Resolved{resolved}, runner.Options{Posargs: posargs})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result.Failed() {
		// The run completed; failure travels in the payload, flagged so
		// clients can branch without parsing.
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleValidateConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("configuration invalid: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"configuration valid: %d environment(s), envlist %v",
		len(cfg.Environments), cfg.Envlist,
	)), nil
}
