package nlu

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI is the production Classifier backed by chat completions.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAI) complete(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAI) DetectIntent(ctx context.Context, text string) (string, error) {
	const system = "You are an intent classifier for a moving company. Classify the user's intent into one of: estimate, booking, quote, price, question, complaint, transfer, other. Return only one word."
	out, err := o.complete(ctx, system, text, 10, 0.3)
	if err != nil {
		return "", err
	}
	return strings.ToLower(out), nil
}

func (o *OpenAI) ExtractName(ctx context.Context, text string) (string, error) {
	const system = "Extract only the person's name from the user's speech. If they say 'my name is John Doe' or 'I am John Doe' or 'this is John Doe', return only 'John Doe'. If they just say 'John Doe', return 'John Doe'. Return only the name in proper title case, nothing else."
	return o.complete(ctx, system, text, 20, 0.2)
}

func (o *OpenAI) ClassifyMoveType(ctx context.Context, text string) (string, error) {
	const system = "You are classifying move types. Return only one of: 'local', 'long distance', 'junk removal', 'in-home service'. Based on the user's description."
	out, err := o.complete(ctx, system, text, 10, 0.2)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.ToLower(out), `'"`), nil
}

var responsePrompts = map[string]string{
	"greeting":      "You are a friendly moving company receptionist. Respond warmly and professionally to the customer's greeting, then guide them toward getting an estimate or booking. Keep responses under 50 words.",
	"general":       "You are a helpful moving company assistant. Provide a brief, professional response that acknowledges the customer and guides them back to booking or getting an estimate. Keep responses under 50 words.",
	"clarification": "You are a moving company assistant. The customer's response was unclear. Politely ask them to clarify or rephrase. Keep responses under 30 words.",
}

func (o *OpenAI) GenerateResponse(ctx context.Context, text, promptContext string) (string, error) {
	system, ok := responsePrompts[promptContext]
	if !ok {
		system = responsePrompts["general"]
	}
	return o.complete(ctx, system, text, 100, 0.7)
}
