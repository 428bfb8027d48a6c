package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/feed"
	"github.com/memojo/memojo/internal/handoff"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/markdown"
	"github.com/memojo/memojo/internal/preferences"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store       *storage.Store
	Profile     *profile.Manager
	Router      *intent.Router
	Feed        *feed.Feed
	Content     *content.Generator
	Handoff     *handoff.Store
	Preferences *preferences.Log
}

// NewMCPServer creates an MCP server with all memojo tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"memojo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("memojo: a personal companion that routes voice commands and generates a personalized daily feed."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("route_utterance",
			mcp.WithDescription("Classify a spoken or typed command as a content request, a navigation, or conversation."),
			mcp.WithString("text", mcp.Description("The transcribed command"), mcp.Required()),
		),
		mcpRouteUtterance(deps),
	)

	s.AddTool(
		mcp.NewTool("get_feed",
			mcp.WithDescription("Return the personalized items of a feed section, generating them if the cached copy is older than an hour."),
			mcp.WithString("section", mcp.Description("Section name: overview, news, music, food, wellness, video, people, travel, surprise or podcasts"), mcp.Required()),
			mcp.WithString("mood", mcp.Description("Optional current mood")),
		),
		mcpGetFeed(deps, false),
	)

	s.AddTool(
		mcp.NewTool("refresh_feed",
			mcp.WithDescription("Discard the cached feed section and generate it again."),
			mcp.WithString("section", mcp.Description("Section name"), mcp.Required()),
			mcp.WithString("mood", mcp.Description("Optional current mood")),
		),
		mcpGetFeed(deps, true),
	)

	s.AddTool(
		mcp.NewTool("generate_content",
			mcp.WithDescription("Generate a recipe, playlist, travel plan, journal prompt or memory reflection tailored to the user."),
			mcp.WithString("kind", mcp.Description("recipe, playlist, travel, journal or memory"), mcp.Required()),
			mcp.WithString("topic", mcp.Description("Dish, mood, destination or memory text (unused for journal)")),
		),
		mcpGenerateContent(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_caption",
			mcp.WithDescription("Write a short, poetic photo caption that reflects the user's interests."),
		),
		mcpGenerateCaption(deps),
	)

	s.AddTool(
		mcp.NewTool("record_love",
			mcp.WithDescription("Record that the user loved a feed item."),
			mcp.WithString("item_id", mcp.Description("ID of the item"), mcp.Required()),
			mcp.WithString("item_type", mcp.Description("Item type, e.g. news or recipe")),
			mcp.WithString("content", mcp.Description("Short description of the item")),
			mcp.WithArray("tags", mcp.Description("Optional tags")),
		),
		mcpRecordLove(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://profile",
			"User Profile",
			mcp.WithResourceDescription("Current user profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"user://recent",
			"Recent Voice Commands",
			mcp.WithResourceDescription("Last 10 processed voice commands"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpRouteUtterance(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get profile: %v", err)), nil
		}

		b, err := json.Marshal(deps.Router.Route(ctx, text, p))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal decision: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetFeed(deps MCPDeps, refresh bool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("section")
		if err != nil {
			return mcpError("section is required"), nil
		}
		section := feed.ParseSection(name)
		mood := req.GetString("mood", "")

		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get profile: %v", err)), nil
		}

		var items []feed.ContentItem
		if refresh {
			items, err = deps.Feed.Refresh(ctx, section, p, mood)
		} else {
			items, err = deps.Feed.Get(ctx, section, p, mood)
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to generate %s: %v", section, err)), nil
		}
		return mcpText(renderItems(items)), nil
	}
}

// renderItems turns feed items into plain text for MCP clients.
func renderItems(items []feed.ContentItem) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "# %s [%s]\n", it.Title, it.ID)
		sb.WriteString(markdown.PlainText(it.BodyHTML))
		if it.ImageURL != "" {
			fmt.Fprintf(&sb, "\nImage: %s", it.ImageURL)
		}
	}
	return sb.String()
}

func mcpGenerateContent(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("kind")
		if err != nil {
			return mcpError("kind is required"), nil
		}
		kind, err := content.ParseKind(raw)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		topic := strings.TrimSpace(req.GetString("topic", ""))
		if topic == "" && kind != content.KindJournal {
			return mcpError("topic is required"), nil
		}

		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get profile: %v", err)), nil
		}
		result, err := deps.Content.Generate(ctx, kind, topic, p)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		if err := deps.Handoff.Put(kind, result); err != nil {
			return mcpError(fmt.Sprintf("generated but failed to store: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGenerateCaption(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := deps.Profile.GetOrEmpty()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get profile: %v", err)), nil
		}
		caption, err := deps.Content.Caption(ctx, p)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(caption), nil
	}
}

func mcpRecordLove(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("item_id")
		if err != nil {
			return mcpError("item_id is required"), nil
		}
		ev := preferences.Event{
			ItemID:   id,
			ItemType: req.GetString("item_type", "item"),
			Action:   preferences.Love,
			Content:  req.GetString("content", ""),
			Tags:     req.GetStringSlice("tags", nil),
		}
		if err := deps.Preferences.Record(ev); err != nil {
			return mcpError(fmt.Sprintf("failed to record love: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Loved %s", id)), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Profile.Get()
		if errors.Is(err, profile.ErrNoProfile) {
			return nil, fmt.Errorf("no profile yet: complete onboarding first")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		interactions, err := deps.Store.RecentVoiceInteractions(10)
		if err != nil {
			return nil, fmt.Errorf("failed to get recent commands: %w", err)
		}

		type commandSummary struct {
			ID         string `json:"id"`
			CreatedAt  string `json:"created_at"`
			Transcript string `json:"transcript"`
			Kind       string `json:"kind"`
			Section    string `json:"section,omitempty"`
			Status     string `json:"status"`
		}

		summaries := make([]commandSummary, len(interactions))
		for i, v := range interactions {
			transcript := v.Transcript
			if utf8.RuneCountInString(transcript) > 200 {
				transcript = string([]rune(transcript)[:200]) + "..."
			}
			summaries[i] = commandSummary{
				ID:         v.ID,
				CreatedAt:  v.CreatedAt.Format(time.RFC3339),
				Transcript: transcript,
				Kind:       v.DecisionKind,
				Section:    v.TargetSection,
				Status:     v.Status,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal commands: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
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
