// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes nnote tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/nnote/internal/filter"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/noteservice"
)

const contractURI = "nnote://note-format"

// Server wraps the MCP server with nnote tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

var stringItems = mcp.Items(map[string]any{"type": "string"})

// New creates a new MCP server with all nnote tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"nnote",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes selected by date, position, attributes and content. "+
			"Returns JSON items with index, id, extensions, attributes and summary."),
		mcp.WithString("note", mcp.Description("Date spec or identifier; sets since and until when they are empty")),
		mcp.WithString("since", mcp.Description("Earliest date spec or identifier, inclusive")),
		mcp.WithString("until", mcp.Description("Latest date spec or identifier, inclusive of the whole period")),
		mcp.WithString("index", mcp.Description("1-based positions in walk order, e.g. 1-3,7")),
		mcp.WithNumber("count", mcp.Description("Maximum number of notes")),
		mcp.WithString("order", mcp.Description("Walk order"), mcp.Enum(noteservice.OrderReverse, noteservice.OrderForward)),
		mcp.WithString("grep", mcp.Description("Regular expression searched in text files")),
		mcp.WithArray("select", stringItems, mcp.Description("Attribute or extension filters that must all match")),
		mcp.WithArray("exclude", stringItems, mcp.Description("Attribute or extension filters that must not match")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note: its files, attributes and the text of its first text file. "+
			"With ext, returns that file's raw text instead."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier")),
		mcp.WithString("ext", mcp.Description("Extension of one file to read, e.g. .md")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note stamped with the current time. "+
			"Read the contract first via the get_note_contract tool or the "+contractURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("File content")),
		mcp.WithString("ext", mcp.Description("File extension, default .md")),
		mcp.WithArray("attributes", stringItems, mcp.Description("Attributes to assign, key or key=value")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("tag_note",
		mcp.WithDescription("Remove then assign attributes on a note. Returns the resulting set."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier")),
		mcp.WithArray("assign", stringItems, mcp.Description("Attributes to assign, key or key=value")),
		mcp.WithArray("remove", stringItems, mcp.Description("Attributes to remove; a bare key removes any value")),
	), s.tagNote)

	s.mcp.AddTool(mcp.NewTool("attach_file",
		mcp.WithDescription("Download an image or PDF from an http(s) URL or data: URI and attach it "+
			"to an existing note as a new extension."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data: URI")),
		mcp.WithString("ext", mcp.Description("Extension override, e.g. .png")),
	), s.attachFile)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the nnote note format contract. "+
			"Call this before creating notes to learn identifiers, files and attributes."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Note Format Contract",
			mcp.WithResourceDescription("How nnote stores notes, files and attributes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := noteservice.Query{
		Note:    req.GetString("note", ""),
		Since:   req.GetString("since", ""),
		Until:   req.GetString("until", ""),
		Index:   req.GetString("index", ""),
		Count:   req.GetInt("count", 0),
		Order:   req.GetString("order", ""),
		Grep:    req.GetString("grep", ""),
		Select:  req.GetStringSlice("select", nil),
		Exclude: req.GetStringSlice("exclude", nil),
	}
	items, err := s.svc.Query(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := nnid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ext := req.GetString("ext", ""); ext != "" {
		data, err := s.svc.ReadFile(ctx, id, ext)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	note, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attrs, err := filter.ParseAttributes(req.GetStringSlice("attributes", nil))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.Add(ctx, req.GetString("ext", ".md"), []byte(content), attrs...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) tagNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := nnid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	assign, err := filter.ParseAttributes(req.GetStringSlice("assign", nil))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	remove, err := filter.ParseAttributes(req.GetStringSlice("remove", nil))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attrs, err := s.svc.TagNote(ctx, id, assign, remove)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(attrs)
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
