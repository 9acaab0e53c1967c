package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/seistools/nrl"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the catalog as MCP tools over stdio",
		Long: `Expose catalog browsing and response resolution as Model Context
Protocol tools (nrl_browse, nrl_resp, nrl_response) on stdin/stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			s := server.NewMCPServer("nrl", version,
				server.WithToolCapabilities(false),
				server.WithRecovery(),
			)

			s.AddTool(mcp.NewTool("nrl_browse",
				mcp.WithDescription("Walk the sensor or datalogger catalog tree. "+
					"With no keys, lists the top-level choices; each key descends one level. "+
					"At a leaf, returns the instrument description and RESP location."),
				mcp.WithString("kind", mcp.Required(),
					mcp.Description("which tree to walk"),
					mcp.Enum("sensors", "dataloggers")),
				mcp.WithArray("keys",
					mcp.Description("catalog labels, one per level, top down"),
					mcp.Items(map[string]any{"type": "string"})),
			), browseTool(client))

			s.AddTool(mcp.NewTool("nrl_resp",
				mcp.WithDescription("Return the raw RESP text for a fully-specified instrument."),
				mcp.WithString("kind", mcp.Required(),
					mcp.Description("which tree the keys address"),
					mcp.Enum("sensor", "datalogger")),
				mcp.WithArray("keys", mcp.Required(),
					mcp.Description("catalog labels, one per level, down to a leaf"),
					mcp.Items(map[string]any{"type": "string"})),
			), respTool(client))

			s.AddTool(mcp.NewTool("nrl_response",
				mcp.WithDescription("Combine a sensor and a data logger into a single channel "+
					"response with a recalculated overall sensitivity."),
				mcp.WithArray("sensor_keys", mcp.Required(),
					mcp.Description("sensor key path, one label per level"),
					mcp.Items(map[string]any{"type": "string"})),
				mcp.WithArray("datalogger_keys", mcp.Required(),
					mcp.Description("data logger key path, one label per level"),
					mcp.Items(map[string]any{"type": "string"})),
			), responseTool(client))

			return server.ServeStdio(s)
		},
	}
}

func browseTool(c *nrl.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := req.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tree := c.Sensors
		if kind == "dataloggers" {
			tree = c.Dataloggers
		}
		result, err := browse(tree, stringSliceArg(req, "keys"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(oj.JSON(result.json(), 2)), nil
	}
}

func respTool(c *nrl.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := req.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		keys := stringSliceArg(req, "keys")

		var text string
		switch kind {
		case "sensor":
			text, err = c.SensorRESP(keys...)
		case "datalogger":
			text, err = c.DataloggerRESP(keys...)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", kind)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func responseTool(c *nrl.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		combined, err := c.Response(
			stringSliceArg(req, "datalogger_keys"),
			stringSliceArg(req, "sensor_keys"),
		)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(oj.JSON(responseJSON(combined), 2)), nil
	}
}

// stringSliceArg extracts an array-of-strings tool argument, tolerating
// a missing value.
func stringSliceArg(req mcp.CallToolRequest, name string) []string {
	raw, ok := req.GetArguments()[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
