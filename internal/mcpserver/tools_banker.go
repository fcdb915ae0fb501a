package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerBankerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"place_bet",
			mcp.WithDescription("Buy shares in the current banker round. The first bet fixes the entry amount."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
			mcp.WithNumber("amount", mcp.Required(), mcp.Description("Stake, a multiple of the round entry amount")),
		),
		s.handlePlaceBet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"cancel_bet",
			mcp.WithDescription("Withdraw all of your shares from the current round within the cancellation window"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id")),
		),
		s.handleCancelBet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_round",
			mcp.WithDescription("Get the current banker round with participants and win chances"),
		),
		s.handleGetRound,
	)
}

func (s *Server) handlePlaceBet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requirePositiveInt(request, "user_id")
	if errResp != nil {
		return errResp, nil
	}
	amount, errResp := requirePositiveInt(request, "amount")
	if errResp != nil {
		return errResp, nil
	}
	receipt, err := s.svc.PlaceBet(ctx, userID, amount)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(receipt), nil
}

func (s *Server) handleCancelBet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requirePositiveInt(request, "user_id")
	if errResp != nil {
		return errResp, nil
	}
	refund, err := s.svc.CancelBet(ctx, userID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"user_id": userID, "refunded": refund}), nil
}

func (s *Server) handleGetRound(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	round, ok := s.svc.CurrentRound()
	if !ok {
		return toolResult(map[string]any{"active": false}), nil
	}
	return toolResult(map[string]any{"active": true, "round": round}), nil
}
