package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPInterpreter calls an OpenAI-compatible chat completion endpoint and
// asks the model to answer with a small JSON envelope: a reply plus an
// optional action proposal.
type HTTPInterpreter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

const interpreterSystemPrompt = `You are the back-office assistant of a jewelry shop.
You help with sales invoices, customer records and stock items.
Answer with a single JSON object: {"reply": string, "action": {"type": string, "data": object} | null, "confidence": number}.
Supported action types: create_invoice, add_customer, add_stock.
create_invoice data: customer_name, customer_phone, customer_address, items (array of {name, quantity, weight, price_per_unit}), tax_rate. Weights are grams, price_per_unit is the rate per 10 g.
add_customer data: name, phone, address, identity_type (aadhar|pan|others), identity_reference.
add_stock data: category, material, weight, purchase_price, description.
Fill only fields the user actually stated. Never guess prices, quantities or weights. Omit anything uncertain.
When the user is not asking to create a record, set action to null and just reply.`

// NewHTTPInterpreter creates an interpreter against an OpenAI-style API.
func NewHTTPInterpreter(baseURL, apiKey, model string) Interpreter {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &HTTPInterpreter{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

func (p *HTTPInterpreter) Interpret(ctx context.Context, req *InterpretRequest) (*InterpretResult, error) {
	messages := make([]chatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, chatCompletionMessage{Role: "system", Content: interpreterSystemPrompt})
	if req.Mode != "" && req.Mode != "assistant" {
		messages = append(messages, chatCompletionMessage{
			Role:    "system",
			Content: fmt.Sprintf("The chat is in %q mode: answer questions only, never propose an action.", req.Mode),
		})
	}
	for _, h := range req.History {
		messages = append(messages, chatCompletionMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, chatCompletionMessage{Role: "user", Content: req.Message})

	body, err := json.Marshal(chatCompletionRequest{Model: p.model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("interpretation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("interpretation API returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("interpretation API returned no choices")
	}

	return parseInterpreterEnvelope(completion.Choices[0].Message.Content)
}

// parseInterpreterEnvelope decodes the model's JSON answer, tolerating
// markdown code fences around it.
func parseInterpreterEnvelope(content string) (*InterpretResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var envelope struct {
		Reply  string `json:"reply"`
		Action *struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		} `json:"action"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("unparseable interpreter answer: %w", err)
	}

	result := &InterpretResult{Reply: envelope.Reply, Confidence: envelope.Confidence}
	if envelope.Action != nil {
		result.ActionType = envelope.Action.Type
		result.Data = envelope.Action.Data
	}
	return result, nil
}
