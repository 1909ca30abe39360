package linkdex

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/linkdex/kit"
)

// RegisterMCP registers the linkdex tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	eps := s.endpoints()

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "linkdex_parse",
		Description: "Parse a links-list markdown document into categories, subcategories and links.",
		InputSchema: inputSchema(map[string]any{
			"markdown":     map[string]any{"type": "string", "description": "Markdown document text"},
			"descriptions": map[string]any{"type": "boolean", "description": "Accept '- [title](url) - description' bullets"},
		}, []string{"markdown"}),
	}, eps.parse, decodeInto[ParseRequest])

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "linkdex_search",
		Description: "Fuzzy-search category, subcategory and link titles of the last result.",
		InputSchema: inputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "Search text"},
			"limit": map[string]any{"type": "integer", "description": "Max hits (default 20)"},
			"kind":  map[string]any{"type": "string", "enum": []string{"category", "subcategory", "link"}},
		}, []string{"query"}),
	}, eps.search, decodeInto[SearchRequest])

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "linkdex_stats",
		Description: "Count categories, subcategories and links of the last result.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, eps.stats, decodeNone)

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "linkdex_refresh",
		Description: "Fetch the document again, parse it and save the result.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, eps.refresh, decodeNone)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func decodeInto[T any](req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r T
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}

func decodeNone(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return &kit.MCPDecodeResult{}, nil
}
