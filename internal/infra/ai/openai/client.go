package openai

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/sashabaranov/go-openai"

    "github.com/MounirKhalil/real-time-investigation-graph/internal/domain/analysis"
    "github.com/MounirKhalil/real-time-investigation-graph/internal/infra/ai/prompt"
)

const maxTokens = 2048

type Client struct {
    *openai.Client
    Model string
}

func NewClient(apiKey, model string) *Client {
    return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// AnalyzeStructured requests a schema-conforming analysis for the prompt.
// Any transport error, refusal or schema mismatch is returned as an error.
func (c *Client) AnalyzeStructured(ctx context.Context, userPrompt string) (*analysis.Analysis, error) {
    req := c.newRequest(prompt.GetStructuredSystemPrompt(), userPrompt)
    req.ResponseFormat = &openai.ChatCompletionResponseFormat{
        Type: openai.ChatCompletionResponseFormatTypeJSONObject,
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return nil, wrapProviderError(err)
    }
    if len(resp.Choices) == 0 {
        return nil, fmt.Errorf("no completion choices returned")
    }

    var out analysis.Analysis
    if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
        return nil, fmt.Errorf("%w: %v", analysis.ErrSchemaViolation, err)
    }
    if len(out.SuggestedQuestions) == 0 {
        return nil, fmt.Errorf("%w: suggested_questions is empty", analysis.ErrSchemaViolation)
    }
    return &out, nil
}

// Complete runs the prompt without a response schema and returns raw text.
func (c *Client) Complete(ctx context.Context, userPrompt string) (string, error) {
    req := c.newRequest(prompt.GetSystemPrompt(), userPrompt)

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return "", wrapProviderError(err)
    }
    if len(resp.Choices) == 0 {
        return "", fmt.Errorf("no completion choices returned")
    }
    return resp.Choices[0].Message.Content, nil
}

func (c *Client) newRequest(system, user string) openai.ChatCompletionRequest {
    model := c.Model
    if model == "" {
        model = "gpt-4o-mini"
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: system},
            {Role: openai.ChatMessageRoleUser, Content: user},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }
    return req
}

func wrapProviderError(err error) error {
    var apiErr *openai.APIError
    if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
        return fmt.Errorf("%w: %v", analysis.ErrQuotaExceeded, err)
    }
    return fmt.Errorf("failed to create chat completion: %w", err)
}
