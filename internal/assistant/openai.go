package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"

	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/types"
)

// PromptSpec is the YAML file that shapes the model's answers.
type PromptSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		Language    string  `yaml:"language"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// OpenAIAssistant answers directly from a chat model. It returns text only;
// product recommendations need the catalog-backed endpoint.
type OpenAIAssistant struct {
	spec   PromptSpec
	client *openai.Client
	model  string
	now    func() time.Time
}

func LoadPromptSpec(path string) (PromptSpec, error) {
	var spec PromptSpec
	b, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return spec, fmt.Errorf("parse prompt %s: %w", path, err)
	}
	return spec, nil
}

func NewOpenAIAssistant(spec PromptSpec, client *openai.Client, model string) *OpenAIAssistant {
	return &OpenAIAssistant{spec: spec, client: client, model: model, now: time.Now}
}

func (a *OpenAIAssistant) Ask(ctx context.Context, query string, user profile.UserProfile) (*types.ChatResponse, error) {
	temp := a.spec.Style.Temperature
	if temp <= 0 {
		temp = 0.3
	}
	maxTok := a.spec.Style.MaxTokens
	if maxTok <= 0 {
		maxTok = 400
	}

	var b strings.Builder
	b.WriteString(a.spec.System)
	if a.spec.Style.Language != "" {
		b.WriteString("\n\nAnswer in ")
		b.WriteString(a.spec.Style.Language)
		b.WriteString(".")
	}
	b.WriteString("\n\nShopper:\n")
	b.WriteString(describeUser(user, a.now()))

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: temp,
		MaxTokens:   maxTok,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: b.String()},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return &types.ChatResponse{
		Answer:          strings.TrimSpace(resp.Choices[0].Message.Content),
		RelatedProducts: []types.ApiRelatedProduct{},
	}, nil
}

func describeUser(user profile.UserProfile, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", user.Name)
	if len(user.Children) == 0 {
		b.WriteString("children: none\n")
		return b.String()
	}
	b.WriteString("children:\n")
	for _, c := range user.Children {
		age := "unknown age"
		if years, err := profile.AgeOn(c.Birthday, today); err == nil {
			age = fmt.Sprintf("%d years old", years)
		}
		fmt.Fprintf(&b, "- %s, %s, %s\n", c.Name, c.Gender, age)
	}
	return b.String()
}
