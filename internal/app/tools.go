package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
)

const (
	ToolContact          = "contactSamuel"
	ToolGetResume        = "getResume"
	ToolRedirectToPage   = "redirectToPage"
	ToolAskClarification = "askClarification"
	ToolAskQuestion      = "askQuestion"
)

// Pages the front end can navigate to.
var redirectPages = []string{"Contact", "Testimonial", "Resume"}

func toolDeclarations(owner string) []ai.Tool {
	return []ai.Tool{
		ai.NewFunctionTool(ToolContact,
			fmt.Sprintf("Creates a contact request so %s can follow up with the user by email. Use when the user wants to get in touch.", owner),
			`{
				"type": "object",
				"properties": {
					"email": {"type": "string", "description": "The user's email address. Required; ask the user for it if they have not given one."},
					"message": {"type": "string", "description": "An optional message from the user."}
				},
				"required": ["email"]
			}`),
		ai.NewFunctionTool(ToolGetResume,
			"Displays the resume to the user.",
			`{"type": "object", "properties": {}}`),
		ai.NewFunctionTool(ToolRedirectToPage,
			"Navigates the user to a page of the website.",
			`{
				"type": "object",
				"properties": {
					"page": {"type": "string", "enum": ["Contact", "Testimonial", "Resume"], "description": "The page to open."}
				},
				"required": ["page"]
			}`),
		ai.NewFunctionTool(ToolAskClarification,
			"Asks the user a short clarifying question when the request is too ambiguous to act on.",
			`{
				"type": "object",
				"properties": {
					"question": {"type": "string", "description": "The clarifying question, addressed to the user."}
				},
				"required": ["question"]
			}`),
		ai.NewFunctionTool(ToolAskQuestion,
			fmt.Sprintf("Answers a question about %s's experience, skills, projects or background.", owner),
			`{
				"type": "object",
				"properties": {
					"question": {"type": "string", "description": "The user's question, rewritten to stand on its own."}
				},
				"required": ["question"]
			}`),
	}
}

type contactArgs struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type redirectArgs struct {
	Page string `json:"page"`
}

type questionArgs struct {
	Question string `json:"question"`
}

// decodeArgs tolerates the empty string some models send for tools without parameters.
func decodeArgs(raw string, v interface{}) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode tool arguments failed: %w", err)
	}
	return nil
}

// canonicalPage maps a case-insensitive page name onto its canonical spelling.
func canonicalPage(page string) (string, bool) {
	page = strings.TrimSpace(page)
	for _, p := range redirectPages {
		if strings.EqualFold(p, page) {
			return p, true
		}
	}
	return "", false
}
