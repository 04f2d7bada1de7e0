package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"tinker/internal/config"
	"tinker/internal/logging"
	"tinker/internal/protocol"
)

// decisionSchema constrains the model to the decision document shape. The
// response MIME type plus this schema makes Gemini emit strict JSON, so
// parsing failures are rare enough to treat as ordinary step failures.
var decisionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"completed": {
			Type:        genai.TypeBoolean,
			Description: "True only when the whole task is finished and no operation is requested.",
		},
		"operation": {
			Type:        genai.TypeString,
			Description: "The single operation to perform next, omitted when completed.",
			Enum:        operationEnum(),
		},
		"path": {
			Type:        genai.TypeString,
			Description: "Target path relative to the project root. Working directory for run_command, glob pattern for scan_project.",
		},
		"fileContent": {
			Type:        genai.TypeString,
			Description: "Full file content for write_file.",
		},
		"command": {
			Type:        genai.TypeString,
			Description: "Shell command line for run_command.",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "One or two sentences telling the user what this step does and why.",
		},
	},
	Required: []string{"completed", "explanation"},
}

func operationEnum() []string {
	kinds := protocol.Kinds()
	enum := make([]string, len(kinds))
	for i, k := range kinds {
		enum[i] = string(k)
	}
	return enum
}

// GeminiClient talks to the Gemini API with JSON-schema constrained output.
type GeminiClient struct {
	client *genai.Client
	model  string
	cfg    config.LLMConfig
}

// NewGemini creates a Gemini-backed client from configuration.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		cfg:    cfg,
	}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete sends the conversation and returns the raw JSON decision text.
func (c *GeminiClient) Complete(ctx context.Context, system string, messages []protocol.Message) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == protocol.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.TimeoutDuration())
	defer cancel()

	logging.APIDebug("generate model=%s messages=%d", c.model, len(messages))

	resp, err := c.client.Models.GenerateContent(callCtx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    decisionSchema,
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return text, nil
}
