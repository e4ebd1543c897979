package generator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-pro"
	agentUserID        = "cv-query-worker"
)

// Agent answers prompts with a Gemini model driven through an adk runner.
// Every call gets its own short-lived session.
type Agent struct {
	name     string
	runner   *runner.Runner
	sessions session.Service
}

func NewAgent(ctx context.Context, apiKey, modelName, agentName string) (*Agent, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	analyzer, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Compare candidate CVs",
		Instruction: instruction(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        analyzer.Name(),
		Agent:          analyzer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &Agent{name: agentName, runner: r, sessions: sessions}, nil
}

func (a *Agent) Generate(ctx context.Context, prompt string) (string, error) {
	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.name,
		UserID:    agentUserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent session: %w", err)
	}
	defer a.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
		AppName:   created.Session.AppName(),
		UserID:    created.Session.UserID(),
		SessionID: created.Session.ID(),
	})

	stream := a.runner.Run(ctx, created.Session.UserID(), created.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", fmt.Errorf("agent stream error: %w", err)
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if output == "" {
		return "", fmt.Errorf("%w: empty agent response", ErrMalformedResponse)
	}
	return output, nil
}

func instruction() string {
	return `
You are an expert recruiting assistant that compares candidates using the CV data you are given.

Your goal is to:
- Answer the recruiter's question about the candidates.
- Compare years of experience, education and skills when asked.
- Point out the strongest candidate for the question and why.

Return your result as a structured JSON object in this format:

{
  "summary": string,
  "strengths": string,
  "recommendations": string
}

Base all reasoning only on the provided CV data.
Do not make up data or assume experience not explicitly mentioned.
Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.
`
}
