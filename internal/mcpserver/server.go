// Package mcpserver exposes discovered skills over the Model Context Protocol
// on stdio. Each tool call runs a fresh discovery pass.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jywlabs/skync/internal/config"
	"github.com/jywlabs/skync/internal/discover"
	"github.com/jywlabs/skync/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the name reported to MCP clients.
const ServerName = "skync-mcp"

// NoSkillsMessage is returned by list_skills when nothing is discovered.
const NoSkillsMessage = "No skills found. Run `skync init` to configure sources."

// Server answers list_skills and read_skill calls.
type Server struct {
	cfg      *config.Config
	discover func(*config.Config) ([]discover.Skill, error)
}

// New creates a Server for cfg.
func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg, discover: discover.DiscoverAll}
}

// ListSkillsTool describes the list_skills tool.
func ListSkillsTool() mcp.Tool {
	return mcp.NewTool("list_skills",
		mcp.WithDescription("List all skills available in the skync library"),
	)
}

// ReadSkillTool describes the read_skill tool.
func ReadSkillTool() mcp.Tool {
	return mcp.NewTool("read_skill",
		mcp.WithDescription("Read the SKILL.md content of a skill by name"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The skill name (directory name) to read"),
		),
	)
}

// ListSkills handles list_skills.
func (s *Server) ListSkills(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skills, err := s.discover(s.cfg)
	if err != nil {
		logger.G(ctx).WithError(err).Error("discovery failed")
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	if len(skills) == 0 {
		return mcp.NewToolResultText(NoSkillsMessage), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d skill(s) found:\n", len(skills))
	for i, skill := range skills {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (source: %s, path: %s)", skill.Name, skill.SourceName, skill.Path)
	}

	return mcp.NewToolResultText(b.String()), nil
}

// ReadSkill handles read_skill. An unknown name is a normal tool error
// result; an unreadable marker is a protocol-level error.
func (s *Server) ReadSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := request.GetArguments()["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("Missing required argument 'name'. Use list_skills to see available skills."), nil
	}

	skills, err := s.discover(s.cfg)
	if err != nil {
		logger.G(ctx).WithError(err).Error("discovery failed")
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	skill, ok := discover.Find(skills, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Skill '%s' not found. Use list_skills to see available skills.", name)), nil
	}

	content, err := discover.ReadMarker(skill)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("skill", name).Error("failed to read skill")
		return nil, err
	}

	return mcp.NewToolResultText(content), nil
}

// MCPServer builds the protocol server with both tools registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Skync MCP server: exposes discovered AI coding skills for reading"),
	)

	srv.AddTool(ListSkillsTool(), s.ListSkills)
	srv.AddTool(ReadSkillTool(), s.ReadSkill)

	return srv
}

// Serve runs the MCP server over in/out until ctx is done or in closes.
func Serve(ctx context.Context, cfg *config.Config, version string, in io.Reader, out io.Writer) error {
	srv := New(cfg).MCPServer(version)

	errLog := logger.L.Logger.Writer()
	defer errLog.Close()

	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(log.New(errLog, "", 0))

	logger.G(ctx).WithField("sources", len(cfg.Sources)).Info("serving skills over stdio")
	return stdio.Listen(ctx, in, out)
}
