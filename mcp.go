package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"xkey/sysex"
)

func runMCP() error {
	log.Println("Starting xKey MCP server...")
	return server.ServeStdio(newMCPServer())
}

func newMCPServer() *server.MCPServer {
	s := server.NewMCPServer(
		"xKey MCP",
		version,
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("xkey_describe-protocol",
		mcp.WithDescription("Returns a description of the Novation firmware SysEx protocol."),
	)
	s.AddTool(docTool, docToolHandler)

	modelsTool := mcp.NewTool("xkey_list-models",
		mcp.WithDescription("Lists the controller models firmware can be encoded for."),
	)
	s.AddTool(modelsTool, listModelsHandler)

	encodeTool := mcp.NewTool("xkey_encode-firmware",
		mcp.WithDescription("Encodes a raw firmware binary into a Novation SysEx stream."),
		mcp.WithString("firmware", mcp.Required(), mcp.Description("The raw firmware image, base64 encoded.")),
		mcp.WithString("model", mcp.Required(), mcp.Description("The target model (e.g., flkey, launchkey-mk3).")),
		mcp.WithNumber("build", mcp.Required(), mcp.Description("The firmware build number (0-999999).")),
	)
	s.AddTool(encodeTool, encodeHandler)

	decodeTool := mcp.NewTool("xkey_decode-sysex",
		mcp.WithDescription("Decodes a Novation firmware SysEx stream back into the raw binary."),
		mcp.WithString("sysex", mcp.Required(), mcp.Description("The SysEx stream, base64 encoded.")),
		mcp.WithBoolean("strict", mcp.Description("Fail when the firmware does not match the metadata CRC.")),
	)
	s.AddTool(decodeTool, decodeHandler)

	inspectTool := mcp.NewTool("xkey_inspect-sysex",
		mcp.WithDescription("Lists the messages of a Novation firmware SysEx stream."),
		mcp.WithString("sysex", mcp.Required(), mcp.Description("The SysEx stream, base64 encoded.")),
	)
	s.AddTool(inspectTool, inspectHandler)

	return s
}

//go:embed protocol.txt
var protocolDoc string

func docToolHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling protocol documentation request.")

	return mcp.NewToolResultText(protocolDoc), nil
}

func listModelsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling list models request.")

	type model struct {
		Name string `json:"name"`
		ID   byte   `json:"id"`
	}
	var out []model
	for _, m := range sysex.Models() {
		out = append(out, model{Name: m.Name, ID: m.ID})
	}
	return jsonResult(out)
}

type encodeResult struct {
	SysEx    string `json:"sysex"`
	Messages int    `json:"messages"`
	Size     int    `json:"size"`
	CRC      string `json:"crc"`
}

func encodeHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling encode request.")

	firmware, err := requireBase64(request, "firmware")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	model, err := request.RequireString("model")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	build, err := request.RequireInt("build")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msgs, err := sysex.EncodeMessages(firmware, model, build)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode firmware: %v", err)), nil
	}

	var stream []byte
	for _, m := range msgs {
		stream = sysex.AppendFrame(stream, m)
	}

	return jsonResult(encodeResult{
		SysEx:    base64.StdEncoding.EncodeToString(stream),
		Messages: len(msgs),
		Size:     len(firmware),
		CRC:      fmt.Sprintf("0x%08X", sysex.Checksum(firmware)),
	})
}

type decodeResult struct {
	Firmware      string `json:"firmware"`
	Model         string `json:"model,omitempty"`
	ModelID       byte   `json:"model_id"`
	Build         string `json:"build"`
	Size          int    `json:"size"`
	CRC           string `json:"crc,omitempty"`
	HasMetadata   bool   `json:"has_metadata"`
	ChecksumValid bool   `json:"checksum_valid"`
}

func decodeHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling decode request.")

	stream, err := requireBase64(request, "sysex")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strict := request.GetBool("strict", false)

	fw, err := sysex.Decode(stream, sysex.WithStrictChecksum(strict), sysex.WithLogger(stdLogger{}))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode SysEx: %v", err)), nil
	}

	res := decodeResult{
		Firmware:      base64.StdEncoding.EncodeToString(fw.Data),
		Model:         fw.Model.Name,
		ModelID:       fw.ModelID,
		Build:         fw.Build.String(),
		Size:          len(fw.Data),
		HasMetadata:   fw.HasMetadata,
		ChecksumValid: fw.ChecksumValid,
	}
	if fw.HasMetadata {
		res.CRC = fmt.Sprintf("0x%08X", fw.CRC)
	}
	return jsonResult(res)
}

func inspectHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling inspect request.")

	stream, err := requireBase64(request, "sysex")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := sysex.Inspect(stream)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to inspect SysEx: %v", err)), nil
	}
	return jsonResult(entries)
}

func requireBase64(request mcp.CallToolRequest, key string) ([]byte, error) {
	encoded, err := request.RequireString(key)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %v", key, err)
	}
	return data, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result to JSON: %v", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}
