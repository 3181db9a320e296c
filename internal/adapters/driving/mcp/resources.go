package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for resources.
const uriScheme = "infoflex://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "environments",
		Name:        "environments",
		Description: "Configured environments with facility contact details",
		MIMEType:    "application/json",
	}, s.handleEnvironmentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "environments/{environmentId}",
		Name:        "environment-facility",
		Description: "Facility contact card of one environment",
		MIMEType:    "application/json",
	}, s.handleFacilityResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "Active keyword table in match order",
		MIMEType:    "application/json",
	}, s.handleCategoriesResource)
}

func (s *Server) handleEnvironmentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, output, err := s.handleListEnvironments(ctx, nil, EmptyInput{})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, output.Environments)
}

// handleFacilityResource returns the facility of a known environment.
func (s *Server) handleFacilityResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractEnvironmentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, env := range s.ports.Registry.Environments() {
		if env.ID == id {
			return jsonResource(req.Params.URI, env.Facility)
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func (s *Server) handleCategoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Classifier.Categories())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEnvironmentID extracts the id from infoflex://environments/{id}.
// Ids are compared upper-cased.
func extractEnvironmentID(uri string) string {
	const prefix = uriScheme + "environments/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return strings.ToUpper(id)
}
