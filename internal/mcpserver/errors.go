package mcpserver

import (
	"errors"
	"fmt"

	"chat-casino/internal/app/wager"
	"chat-casino/internal/game"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

// Engine errors already carry their wire code as text.
var domainErrors = []error{
	game.ErrInvalidAmount,
	game.ErrInsufficientFunds,
	game.ErrNotJoinable,
	game.ErrCancellationWindowExpired,
	game.ErrDuelNotFound,
	game.ErrNotCreator,
	game.ErrNoActiveBets,
	game.ErrNoActiveRound,
	wager.ErrInvalidRequest,
	wager.ErrSelfTransfer,
}

func mapDomainError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("internal_error", "unknown error")
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return toolError(known.Error(), err.Error())
		}
	}
	return toolError("internal_error", err.Error())
}
