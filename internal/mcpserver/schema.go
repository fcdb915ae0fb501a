package mcpserver

import (
	"math"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// requirePositiveInt reads a whole, positive number argument. JSON numbers
// arrive as float64.
func requirePositiveInt(request mcp.CallToolRequest, name string) (int64, *mcp.CallToolResult) {
	v, err := request.RequireFloat(name)
	if err != nil {
		return 0, toolError("invalid_request", err.Error())
	}
	if v <= 0 || v != math.Trunc(v) || v > 1<<53 {
		return 0, toolError("invalid_request", name+" must be a positive integer")
	}
	return int64(v), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
