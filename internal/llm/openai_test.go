package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"livecv.dev/digital-twin/internal/core"
)

// fakeLLM records the last request and replays canned output.
type fakeLLM struct {
	chunks   []string
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.options = llms.CallOptions{}
	for _, opt := range options {
		opt(&f.options)
	}
	if f.err != nil {
		return nil, f.err
	}
	full := ""
	for _, c := range f.chunks {
		if f.options.StreamingFunc != nil {
			if err := f.options.StreamingFunc(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
		full += c
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: full}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func newFakeModel(f *fakeLLM) *OpenAIChatModel {
	return &OpenAIChatModel{name: "groq:test", client: f, temperature: 0.3, logger: slog.Default()}
}

var prompt = []core.Message{
	{Role: core.RoleSystem, Content: "persona"},
	{Role: core.RoleUser, Content: "earlier question"},
	{Role: core.RoleAssistant, Content: "earlier answer"},
	{Role: core.RoleUser, Content: "new question"},
}

func TestOpenAIChatModelGenerate(t *testing.T) {
	f := &fakeLLM{chunks: []string{"Hello ", "world"}}
	m := newFakeModel(f)

	reply, err := m.Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", reply)
	assert.Equal(t, "groq:test", m.Name())
	assert.Equal(t, 0.3, f.options.Temperature)

	require.Len(t, f.messages, 4)
	assert.Equal(t, schema.ChatMessageTypeSystem, f.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, f.messages[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, f.messages[2].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, f.messages[3].Role)
	assert.Equal(t, llms.TextContent{Text: "new question"}, f.messages[3].Parts[0])
}

func TestOpenAIChatModelGenerateError(t *testing.T) {
	m := newFakeModel(&fakeLLM{err: errors.New("rate limited")})
	_, err := m.Generate(context.Background(), prompt)
	assert.ErrorContains(t, err, "rate limited")
}

func TestOpenAIChatModelStream(t *testing.T) {
	f := &fakeLLM{chunks: []string{"Olá", "", ", tudo", " bem?"}}
	m := newFakeModel(f)

	var got []string
	err := m.Stream(context.Background(), prompt, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Olá", ", tudo", " bem?"}, got, "empty chunks are dropped, order is kept")
}

func TestOpenAIChatModelStreamStopsOnConsumerError(t *testing.T) {
	f := &fakeLLM{chunks: []string{"a", "b", "c"}}
	m := newFakeModel(f)
	gone := errors.New("client gone")

	calls := 0
	err := m.Stream(context.Background(), prompt, func(chunk string) error {
		calls++
		return gone
	})
	assert.ErrorIs(t, err, gone)
	assert.Equal(t, 1, calls)
}
