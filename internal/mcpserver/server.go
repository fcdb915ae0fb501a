package mcpserver

import (
	"net/http"

	"chat-casino/internal/app/wager"

	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the wager operations as MCP tools for agent-style
// orchestrators.
type Server struct {
	svc *wager.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *wager.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"chat-casino",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		svc:        svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerWalletTools()
	s.registerDuelTools()
	s.registerBankerTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
