package mcp

import (
	"github.com/lukman83/skinscout/internal/catalog"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	serverName    = "skinscout"
	serverVersion = "1.0.0"
)

// NewServer creates the MCP server with all tools registered.
func NewServer(svc *catalog.Service, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	registerTools(s, newHandler(svc, logger))
	return s
}

// Serve starts the MCP stdio server.
func Serve(svc *catalog.Service, logger *zap.Logger) error {
	return server.ServeStdio(NewServer(svc, logger))
}
