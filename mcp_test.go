package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func callTool(t *testing.T, handler server.ToolHandlerFunc, args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()

	request := mcp.CallToolRequest{}
	request.Params.Arguments = args

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return result, text.Text
}

func TestMCPEncodeDecode(t *testing.T) {
	fw := make([]byte, 100)
	for i := range fw {
		fw[i] = byte(i * 3)
	}

	result, text := callTool(t, encodeHandler, map[string]interface{}{
		"firmware": base64.StdEncoding.EncodeToString(fw),
		"model":    "flkey",
		"build":    float64(52),
	})
	if result.IsError {
		t.Fatalf("encode failed: %s", text)
	}

	var encoded encodeResult
	if err := json.Unmarshal([]byte(text), &encoded); err != nil {
		t.Fatalf("encode result is not JSON: %v", err)
	}
	if encoded.Messages != 6 || encoded.Size != 100 {
		t.Errorf("encode result = %+v", encoded)
	}

	result, text = callTool(t, decodeHandler, map[string]interface{}{
		"sysex":  encoded.SysEx,
		"strict": true,
	})
	if result.IsError {
		t.Fatalf("decode failed: %s", text)
	}

	var decoded decodeResult
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("decode result is not JSON: %v", err)
	}
	if decoded.Firmware != base64.StdEncoding.EncodeToString(fw) {
		t.Error("decoded firmware differs from the original")
	}
	if decoded.Model != "flkey" || decoded.Build != "000052" || !decoded.ChecksumValid {
		t.Errorf("decode result = %+v", decoded)
	}
	if decoded.CRC != encoded.CRC {
		t.Errorf("decode CRC = %s, want %s", decoded.CRC, encoded.CRC)
	}
}

func TestMCPEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{
			name: "unknown model",
			args: map[string]interface{}{"firmware": "AAAA", "model": "launchpad", "build": float64(1)},
			want: "unknown model",
		},
		{
			name: "bad base64",
			args: map[string]interface{}{"firmware": "not base64!", "model": "flkey", "build": float64(1)},
			want: "base64",
		},
		{
			name: "missing build",
			args: map[string]interface{}{"firmware": "AAAA", "model": "flkey"},
			want: "build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, text := callTool(t, encodeHandler, tt.args)
			if !result.IsError {
				t.Fatalf("expected a tool error, got %s", text)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("error %q should mention %q", text, tt.want)
			}
		})
	}
}

func TestMCPDecodeMalformed(t *testing.T) {
	result, text := callTool(t, decodeHandler, map[string]interface{}{
		"sysex": base64.StdEncoding.EncodeToString([]byte{0x00, 0x01, 0x02}),
	})
	if !result.IsError {
		t.Fatalf("expected a tool error, got %s", text)
	}
	if !strings.Contains(text, "malformed") {
		t.Errorf("error %q should mention the malformed header", text)
	}
}

func TestMCPListModels(t *testing.T) {
	_, text := callTool(t, listModelsHandler, nil)
	if !strings.Contains(text, `"flkey"`) || !strings.Contains(text, `"launchkey-mk3"`) {
		t.Errorf("list models output = %s", text)
	}
}

func TestMCPInspect(t *testing.T) {
	_, text := callTool(t, encodeHandler, map[string]interface{}{
		"firmware": base64.StdEncoding.EncodeToString(make([]byte, 64)),
		"model":    "launchkey-mk3",
		"build":    float64(3),
	})
	var encoded encodeResult
	if err := json.Unmarshal([]byte(text), &encoded); err != nil {
		t.Fatal(err)
	}

	result, text := callTool(t, inspectHandler, map[string]interface{}{"sysex": encoded.SysEx})
	if result.IsError {
		t.Fatalf("inspect failed: %s", text)
	}
	if !strings.Contains(text, `"METADATA"`) || !strings.Contains(text, `"END"`) {
		t.Errorf("inspect output = %s", text)
	}
}

func TestMCPDescribeProtocol(t *testing.T) {
	_, text := callTool(t, docToolHandler, nil)
	if !strings.Contains(text, "F0 00 20 29") {
		t.Errorf("protocol description missing the envelope: %s", text)
	}
}

func TestNewMCPServer(t *testing.T) {
	if newMCPServer() == nil {
		t.Fatal("newMCPServer() returned nil")
	}
}
