package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDuelTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_duel",
			mcp.WithDescription("Open a dice duel. The bet is escrowed until the duel is joined or cancelled."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Creator user id")),
			mcp.WithNumber("bet", mcp.Required(), mcp.Description("Stake, at least the duel minimum")),
		),
		s.handleCreateDuel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_duel",
			mcp.WithDescription("Join an open duel by matching its bet. Dice are rolled after a short delay."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Opponent user id")),
			mcp.WithNumber("duel_id", mcp.Required(), mcp.Description("Duel id")),
		),
		s.handleJoinDuel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"cancel_duel",
			mcp.WithDescription("Cancel your own open duel within the cancellation window and get the bet back."),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Creator user id")),
			mcp.WithNumber("duel_id", mcp.Required(), mcp.Description("Duel id")),
		),
		s.handleCancelDuel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_open_duels",
			mcp.WithDescription("List duels waiting for an opponent, newest first"),
			mcp.WithNumber("limit", mcp.Description("Max items, default 20, max 100")),
		),
		s.handleListOpenDuels,
	)
}

func (s *Server) handleCreateDuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requirePositiveInt(request, "user_id")
	if errResp != nil {
		return errResp, nil
	}
	bet, errResp := requirePositiveInt(request, "bet")
	if errResp != nil {
		return errResp, nil
	}
	d, err := s.svc.CreateDuel(ctx, userID, bet)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(d), nil
}

func (s *Server) handleJoinDuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requirePositiveInt(request, "user_id")
	if errResp != nil {
		return errResp, nil
	}
	duelID, errResp := requirePositiveInt(request, "duel_id")
	if errResp != nil {
		return errResp, nil
	}
	d, err := s.svc.JoinDuel(ctx, userID, duelID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(d), nil
}

func (s *Server) handleCancelDuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requirePositiveInt(request, "user_id")
	if errResp != nil {
		return errResp, nil
	}
	duelID, errResp := requirePositiveInt(request, "duel_id")
	if errResp != nil {
		return errResp, nil
	}
	d, err := s.svc.CancelDuel(ctx, userID, duelID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(d), nil
}

func (s *Server) handleListOpenDuels(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(int(request.GetFloat("limit", 0)))
	items := s.svc.ListOpenDuels()
	if len(items) > limit {
		items = items[:limit]
	}
	return toolResult(map[string]any{"items": items}), nil
}
