package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"livecv.dev/digital-twin/internal/core"
)

func TestToGeminiContent(t *testing.T) {
	system, history, last, err := toGeminiContent(prompt)
	require.NoError(t, err)
	assert.Equal(t, "persona", system)
	assert.Equal(t, "new question", last)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("earlier question")}, history[0].Parts)
	assert.Equal(t, "model", history[1].Role)
}

func TestToGeminiContentRejectsBadPrompts(t *testing.T) {
	_, _, _, err := toGeminiContent(nil)
	assert.Error(t, err)

	_, _, _, err = toGeminiContent([]core.Message{{Role: core.RoleAssistant, Content: "dangling"}})
	assert.ErrorContains(t, err, "last message")
}

func TestResponseText(t *testing.T) {
	assert.Empty(t, responseText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hola "), genai.Text("mundo")}},
	}}}
	assert.Equal(t, "Hola mundo", responseText(resp))
}
