package tutorrag

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/studyhall/tutor-rag/config"
)

const Version = "1.0.0"

// NewServer builds the MCP server exposing the tutoring tools.
func NewServer(ctx context.Context, cfg *config.Config) (*server.MCPServer, *TutorClient, error) {
	client, err := NewTutorClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create tutor client failed, err: %w", err)
	}

	s := server.NewMCPServer(
		"tutor-rag",
		Version,
		server.WithInstructions("Nutrition-school tutoring assistant: upload course documents and answer student questions from them"),
	)

	// Document management tools
	s.AddTool(
		mcp.NewToolWithRawSchema("tutor-upload-document", "Upload a course document (PDF) and index its content for retrieval", GetUploadDocumentSchema()),
		HandleUploadDocument(client),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("tutor-list-documents", "List all indexed course documents with their fingerprints and chunk counts", GetListDocumentsSchema()),
		HandleListDocuments(client),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("tutor-delete-document", "Remove an indexed course document and all of its chunks", GetDeleteDocumentSchema()),
		HandleDeleteDocument(client),
	)

	// Q&A tool
	s.AddTool(
		mcp.NewToolWithRawSchema("tutor-ask", "Answer a student question from the indexed course material", GetAskSchema()),
		HandleAsk(client),
	)

	// Session tools
	s.AddTool(
		mcp.NewToolWithRawSchema("tutor-create-session", "Open a chat session for tracking a student conversation", GetCreateSessionSchema()),
		HandleCreateSession(client),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("tutor-delete-session", "Close and delete a chat session", GetDeleteSessionSchema()),
		HandleDeleteSession(client),
	)

	return s, client, nil
}

// GetUploadDocumentSchema returns the input schema of tutor-upload-document.
func GetUploadDocumentSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"filename": {
				"type": "string",
				"description": "Document filename including extension, e.g. anatomy.pdf"
			},
			"content_base64": {
				"type": "string",
				"description": "Base64-encoded file content"
			}
		},
		"required": ["filename", "content_base64"]
	}`)
}

// GetListDocumentsSchema returns the input schema of tutor-list-documents.
func GetListDocumentsSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {}
	}`)
}

// GetDeleteDocumentSchema returns the input schema of tutor-delete-document.
func GetDeleteDocumentSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"filename": {
				"type": "string",
				"description": "Filename of the document to delete"
			}
		},
		"required": ["filename"]
	}`)
}

// GetAskSchema returns the input schema of tutor-ask.
func GetAskSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {
				"type": "string",
				"description": "The student question, in Russian"
			},
			"session_id": {
				"type": "string",
				"description": "Optional chat session to record this turn in"
			}
		},
		"required": ["question"]
	}`)
}

// GetCreateSessionSchema returns the input schema of tutor-create-session.
func GetCreateSessionSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {}
	}`)
}

// GetDeleteSessionSchema returns the input schema of tutor-delete-session.
func GetDeleteSessionSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"session_id": {
				"type": "string",
				"description": "Identifier of the session to delete"
			}
		},
		"required": ["session_id"]
	}`)
}

// HandleUploadDocument decodes and ingests one uploaded document.
func HandleUploadDocument(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		filename, _ := args["filename"].(string)
		encoded, _ := args["content_base64"].(string)
		if filename == "" || encoded == "" {
			return mcp.NewToolResultError("filename and content_base64 are required"), nil
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("decode content failed: %v", err)), nil
		}

		report, err := client.Ingest(ctx, filename, data)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ingest %s failed: %v", filename, err)), nil
		}
		return jsonResult(report)
	}
}

// HandleListDocuments lists the indexed documents.
func HandleListDocuments(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := client.ListDocuments(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list documents failed: %v", err)), nil
		}
		return jsonResult(map[string]any{"documents": docs, "count": len(docs)})
	}
}

// HandleDeleteDocument removes one indexed document.
func HandleDeleteDocument(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, _ := request.GetArguments()["filename"].(string)
		if filename == "" {
			return mcp.NewToolResultError("filename is required"), nil
		}
		deleted, err := client.DeleteDocument(ctx, filename)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete %s failed: %v", filename, err)), nil
		}
		return jsonResult(map[string]any{"file": filename, "chunks_deleted": deleted})
	}
}

// HandleAsk answers a student question.
func HandleAsk(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		question, _ := args["question"].(string)
		sessionID, _ := args["session_id"].(string)
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		out, err := client.Ask(ctx, question, sessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		payload := map[string]any{
			"kind":       out.Kind,
			"answer":     out.Answer,
			"intent":     out.Intent,
			"confidence": out.Confidence,
		}
		if len(out.Sources) > 0 {
			payload["sources"] = out.Sources
		}
		if len(out.Suggestions) > 0 {
			payload["suggestions"] = out.Suggestions
		}
		if out.Err != nil {
			payload["error"] = out.Err.Error()
		}
		return jsonResult(payload)
	}
}

// HandleCreateSession opens a chat session.
func HandleCreateSession(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess, err := client.CreateSession(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create session failed: %v", err)), nil
		}
		return jsonResult(map[string]any{"session_id": sess.ID, "created_at": sess.CreatedAt})
	}
}

// HandleDeleteSession deletes a chat session.
func HandleDeleteSession(client *TutorClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["session_id"].(string)
		if id == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		ok, err := client.DeleteSession(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete session failed: %v", err)), nil
		}
		return jsonResult(map[string]any{"session_id": id, "deleted": ok})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
