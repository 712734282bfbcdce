package reason

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAIService implements Service on the OpenAI Responses API. Turns are
// chained through previous_response_id, so the latest response id doubles
// as the opaque thread id callers persist between invocations.
type OpenAIService struct {
	client openai.Client
	model  string
}

// OpenAIOptions configures the OpenAI-backed service.
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewOpenAIService creates a Responses-API-backed reasoning service.
func NewOpenAIService(opts OpenAIOptions) *OpenAIService {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &OpenAIService{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

// StartThread opens a fresh conversation.
func (s *OpenAIService) StartThread(opts ThreadOptions) Thread {
	return &openAIThread{svc: s, opts: opts}
}

// ResumeThread reattaches to the thread identified by a previously
// persisted response id.
func (s *OpenAIService) ResumeThread(id string, opts ThreadOptions) Thread {
	return &openAIThread{svc: s, opts: opts, previousID: id}
}

type openAIThread struct {
	svc        *OpenAIService
	opts       ThreadOptions
	previousID string
}

// Run sends the prompt as one Responses turn and normalizes the answer.
func (t *openAIThread) Run(ctx context.Context, prompt string) (*Turn, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(t.svc.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	}
	if instr := buildInstructions(t.opts.WorkingDirectory); instr != "" {
		params.Instructions = openai.String(instr)
	}
	if t.previousID != "" {
		params.PreviousResponseID = openai.String(t.previousID)
	}

	resp, err := t.svc.client.Responses.New(ctx, params)
	if err != nil {
		return nil, err
	}

	t.previousID = resp.ID
	return &Turn{
		ThreadID: resp.ID,
		Response: finalText(resp),
	}, nil
}

// buildInstructions frames the service as a second reviewer and anchors it
// to the caller's working directory when one was granted.
func buildInstructions(workingDirectory string) string {
	const persona = "You are a senior engineer giving a second opinion on code and design questions. Be direct and concrete."
	if workingDirectory == "" {
		return persona
	}
	return fmt.Sprintf("%s The user is working in the directory %s; treat paths in the conversation as relative to it.", persona, workingDirectory)
}

// finalText normalizes the API result to plain text. The Responses output
// shape is a union, so this is an explicit three-branch decode: aggregated
// output text, then the first message content item, then the serialized
// response as a last resort.
func finalText(resp *responses.Response) string {
	if text := strings.TrimSpace(resp.OutputText()); text != "" {
		return text
	}
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		msg := item.AsMessage()
		for _, part := range msg.Content {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text
			}
		}
	}
	return resp.RawJSON()
}
