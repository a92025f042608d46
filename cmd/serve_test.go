package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/inletlabs/mailsense/internal/config"
	"github.com/inletlabs/mailsense/internal/server"
)

func TestNewServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag string
		want string
	}{
		{flag: "transport", want: "stdio"},
		{flag: "http-addr", want: ":8080"},
		{flag: "yolo", want: "false"},
		{flag: "debug", want: "false"},
		{flag: "metrics-enabled", want: "true"},
		{flag: "metrics-addr", want: ":9090"},
	}

	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("flag %s not defined", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("flag %s default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}
}

func TestRegisterAllTools(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	sc, err := server.NewServerContext(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, sc, true); err != nil {
		t.Fatalf("registerAllTools() error = %v", err)
	}

	if len(mcpSrv.ListTools()) == 0 {
		t.Error("no tools registered")
	}
}

func TestGenerateToolsMarkdownMentionsEveryTool(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	sc, err := server.NewServerContext(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, sc, false); err != nil {
		t.Fatalf("registerAllTools() error = %v", err)
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, st := range serverTools {
		tools = append(tools, st.Tool)
	}

	md := generateToolsMarkdown(tools)
	for _, tool := range tools {
		if !strings.Contains(md, "### "+tool.Name) {
			t.Errorf("generated markdown missing section for tool %s", tool.Name)
		}
	}
}
