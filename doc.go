/*
Package server exposes the MCP configuration converter over HTTP on an Echo instance.

It mounts two surfaces: a Model Context Protocol endpoint (Streamable HTTP, JSON-RPC 2.0) offering
conversion tools to AI assistants, and a plain REST route that takes the JSON body and answers with YAML.
The conversion itself lives in pkg/convert and can be used without this package.

# Quick Start

	package main

	import (
		server "github.com/BrunoKrugel/mcp-transmogrifier"
		"github.com/labstack/echo/v4"
	)

	func main() {
		e := echo.New()

		mcp := server.New(e)
		if err := mcp.Mount("/mcp"); err != nil {
			e.Logger.Fatal(err)
		}

		e.Logger.Fatal(e.Start(":8080"))
	}

# Configuration

	mcp := server.NewWithConfig(e, &server.Config{
		Name:        "My converter",
		Version:     "1.0.0",
		ConvertPath: "/api/convert",
		Mode:        convert.ModeRegex,
	})

Mode selects how scalars are quoted. convert.ModePolicy (the default) decides quoting per scalar while
rendering; convert.ModeRegex renders with generic quoting and rewrites the text afterwards.

# Tools

The MCP endpoint answers initialize, ping, tools/list and tools/call. Two tools are listed:

  - convert_mcp_json takes {"json": "...", "mode": "policy|regex"} and returns the YAML as text content.
    When nothing can be converted the result has isError set.
  - inspect_mcp_json takes {"json": "..."} and returns the detected layout and the transport type
    inferred for every server, encoded as JSON text.

Sessions are issued on initialize through the Mcp-Session-Id header and closed with DELETE on the
mount path.

# REST

	curl -X POST --data-binary @claude_desktop_config.json http://localhost:8080/convert

A successful conversion answers 200 with text/yaml. Input that cannot be converted answers 422 with
{"valid": false, "error": "..."}. The mode query parameter overrides the configured mode per request.
*/
package server
