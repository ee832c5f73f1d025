package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

var (
	searchToolName    = "search_labor_laws"
	searchDescription = "Answer a question about Kenyan labor law for domestic workers, grounded in web search. Returns the answer text and the sources it was grounded on."

	translateToolName    = "translate_legalese"
	translateDescription = "Rewrite a legal passage (contract clause or statute) in plain English, Kiswahili or Sheng, with an explanation of why it matters and the acts it cites."

	chatToolName    = "chat_with_worker"
	chatDescription = "Ask the KaziTrust counselor for advice on a workplace situation. Pass earlier turns in history to continue a conversation."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the labor-rights question"`
	Language string `json:"language,omitempty" jsonschema:"answer language: English, Kiswahili or Sheng (default: English)"`
}

// TranslateInput represents the input arguments for the translate tool.
type TranslateInput struct {
	Text     string `json:"text" jsonschema:"the legal passage to simplify"`
	Language string `json:"language,omitempty" jsonschema:"target language: English, Kiswahili or Sheng (default: Kiswahili)"`
}

// ChatInput represents the input arguments for the chat tool.
type ChatInput struct {
	Message string       `json:"message" jsonschema:"the worker's message"`
	History []legal.Turn `json:"history,omitempty" jsonschema:"earlier turns of the conversation, oldest first"`
}

// ChatOutput is the counselor's reply.
type ChatOutput struct {
	Reply string `json:"reply"`
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, legal.SearchResult, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query is required"), legal.SearchResult{}, nil
	}
	lang, err := parseLanguage(input.Language, legal.English)
	if err != nil {
		return errorResult(err.Error()), legal.SearchResult{}, nil
	}

	s.config.Logger.Debug("MCP search request", "query", input.Query, "language", lang.String())

	res, err := s.config.Gateway.SearchLaborLaws(ctx, input.Query, lang)
	if err != nil {
		s.config.Logger.Error("search failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to search labor laws: %v", err)), legal.SearchResult{}, nil
	}
	if res.Sources == nil {
		res.Sources = []legal.GroundingSource{}
	}

	return jsonResult(res), res, nil
}

// handleTranslate processes a translation request.
func (s *Server) handleTranslate(ctx context.Context, _ *mcp.CallToolRequest, input TranslateInput) (*mcp.CallToolResult, legal.TranslationResult, error) {
	if strings.TrimSpace(input.Text) == "" {
		return errorResult("text is required"), legal.TranslationResult{}, nil
	}
	lang, err := parseLanguage(input.Language, legal.Kiswahili)
	if err != nil {
		return errorResult(err.Error()), legal.TranslationResult{}, nil
	}

	s.config.Logger.Debug("MCP translate request", "language", lang.String(), "chars", len(input.Text))

	res, err := s.config.Gateway.TranslateLegalese(ctx, input.Text, lang)
	if err != nil {
		s.config.Logger.Error("translation failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to translate: %v", err)), legal.TranslationResult{}, nil
	}
	if res.Citations == nil {
		res.Citations = []string{}
	}

	return jsonResult(res), res, nil
}

// handleChat processes a counselor message.
func (s *Server) handleChat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return errorResult("message is required"), ChatOutput{}, nil
	}
	for i, t := range input.History {
		if t.Role != legal.RoleUser && t.Role != legal.RoleAssistant {
			return errorResult(fmt.Sprintf("history[%d]: role must be user or assistant", i)), ChatOutput{}, nil
		}
	}

	s.config.Logger.Debug("MCP chat request", "history", len(input.History))

	reply, err := s.config.Gateway.ChatWithWorker(ctx, input.History, input.Message)
	if err != nil {
		s.config.Logger.Error("chat failed", "error", err)
		return errorResult(fmt.Sprintf("Failed to reach the counselor: %v", err)), ChatOutput{}, nil
	}

	out := ChatOutput{Reply: reply}
	return jsonResult(out), out, nil
}

func parseLanguage(raw string, def legal.Language) (legal.Language, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return legal.ParseLanguage(raw)
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}
}
