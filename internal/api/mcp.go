package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/roster"
)

// NewMCPServer creates an MCP server exposing the analysis and post tools.
func NewMCPServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"hackmix",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("hackmix enriches a hackathon participant list, ranks who to meet and suggests teams."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze_participants",
			mcp.WithDescription("Enrich a participant list with professional and social profiles, rank the top people to meet, and suggest talking points, similar backgrounds and teams. Returns the analysis as JSON."),
			mcp.WithArray("participants",
				mcp.Description(`Participants as full names or objects {"name","company","linkedinUrl","email"}`),
				mcp.Required(),
			),
			mcp.WithObject("user_profile", mcp.Description("Optional caller profile used for background matching")),
		),
		mcpAnalyze(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_post",
			mcp.WithDescription("Draft a post-event social post mentioning the top people met."),
			mcp.WithString("event_name", mcp.Description("Hackathon name"), mcp.Required()),
			mcp.WithArray("participants", mcp.Description("Top participants, as returned in heavyHitters")),
			mcp.WithString("experience", mcp.Description("Optional notes on the caller's experience")),
		),
		mcpGeneratePost(deps),
	)

	return s
}

func mcpAnalyze(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		raw, ok := args["participants"]
		if !ok {
			return mcpError("participants is required"), nil
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid participants: %v", err)), nil
		}
		inputs, err := roster.ParseJSON(b)
		if err != nil {
			return mcpError(fmt.Sprintf("invalid participants: %v", err)), nil
		}

		var reference *participant.Input
		if up, ok := args["user_profile"]; ok && up != nil {
			b, err := json.Marshal(up)
			if err != nil {
				return mcpError(fmt.Sprintf("invalid user_profile: %v", err)), nil
			}
			reference = &participant.Input{}
			if err := json.Unmarshal(b, reference); err != nil {
				return mcpError(fmt.Sprintf("invalid user_profile: %v", err)), nil
			}
		}

		var result *participant.Result
		for ev := range deps.Analyzer.Stream(ctx, inputs, reference) {
			switch {
			case ev.Error != "":
				return mcpError(fmt.Sprintf("analysis failed: %s", ev.Error)), nil
			case ev.Result != nil:
				result = ev.Result
			}
		}
		if result == nil {
			return mcpError("analysis did not complete"), nil
		}

		out, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpGeneratePost(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("event_name")
		if err != nil || name == "" {
			return mcpError("event_name is required"), nil
		}

		var top []participant.Participant
		if raw, ok := req.GetArguments()["participants"]; ok && raw != nil {
			b, err := json.Marshal(raw)
			if err == nil {
				err = json.Unmarshal(b, &top)
			}
			if err != nil {
				return mcpError(fmt.Sprintf("invalid participants: %v", err)), nil
			}
		}

		return mcpText(deps.Posts.Post(ctx, name, top, req.GetString("experience", ""))), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
