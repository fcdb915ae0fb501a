package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerWalletTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_balance",
			mcp.WithDescription("Get a user's balance"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
		),
		s.handleGetBalance,
	)
}

func (s *Server) handleGetBalance(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requirePositiveInt(request, "user_id")
	if errResp != nil {
		return errResp, nil
	}
	return toolResult(s.svc.Balance(userID)), nil
}
