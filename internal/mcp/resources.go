// ABOUTME: MCP resource implementations for cached schedules.
// ABOUTME: Provides workouts://schedules, read from the cache without syncing.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const schedulesURI = "workouts://schedules"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         schedulesURI,
		Name:        "Cached Schedules",
		Description: "Every schedule in the local cache, without contacting the server",
		MIMEType:    "application/json",
	}, s.handleSchedulesResource)
}

func (s *Server) handleSchedulesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	schedules, err := s.cache.ListSchedules()
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	result := map[string]interface{}{
		"count":     len(schedules),
		"schedules": schedules,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      schedulesURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
