package parsing

import (
	"encoding/json"
	"testing"

	"github.com/jobcoach/jobcoach/internal/llm"
	"github.com/jobcoach/jobcoach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(llm.ChatCompletion{
		Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: content}}},
	})
	require.NoError(t, err)
	return body
}

func toolBody(t *testing.T, args string) []byte {
	t.Helper()
	body, err := json.Marshal(llm.ChatCompletion{
		Choices: []llm.Choice{{Message: llm.Message{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				Type:     "function",
				Function: llm.FunctionCall{Name: "submit_cover_letter", Arguments: args},
			}},
		}}},
	})
	require.NoError(t, err)
	return body
}

func TestParse_FencedResumeOptimization(t *testing.T) {
	content := "Here is the result:\n```json\n" +
		`{"atsScore":72,"keywordInsights":["Add Kubernetes"],"suggestedRewrites":[],"overallFeedback":"Solid."}` +
		"\n```"

	var result types.ResumeOptimization
	err := Parse(contentBody(t, content), ModeFenced, "resume_optimization", &result)
	require.NoError(t, err)

	assert.Equal(t, 72.0, result.ATSScore)
	assert.Equal(t, []string{"Add Kubernetes"}, result.KeywordInsights)
	assert.Equal(t, "Solid.", result.OverallFeedback)
}

func TestParse_FencedAndBareAreEquivalent(t *testing.T) {
	doc := `{"matchScore":80,"strengths":["Go"],"gaps":["Rust"],"recommendations":["Ship a CLI"]}`

	var fenced, bare types.SkillGapAnalysis
	require.NoError(t, Parse(contentBody(t, "```json\n"+doc+"\n```"), ModeFenced, "skill_gap", &fenced))
	require.NoError(t, Parse(contentBody(t, doc), ModeFenced, "skill_gap", &bare))
	assert.Equal(t, bare, fenced)
}

func TestParse_Direct(t *testing.T) {
	var result types.NetworkingTip
	err := Parse(contentBody(t, `{"tips":["Mention the meetup"],"followUpMessage":"Great to meet you"}`),
		ModeDirect, "networking_tip", &result)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mention the meetup"}, result.Tips)
}

func TestParse_DirectRejectsFence(t *testing.T) {
	var result types.NetworkingTip
	err := Parse(contentBody(t, "```json\n{\"tips\":[],\"followUpMessage\":\"x\"}\n```"),
		ModeDirect, "networking_tip", &result)

	var unparsable *UnparsableResultError
	require.ErrorAs(t, err, &unparsable)
	assert.Contains(t, unparsable.Raw, "```")
}

func TestParse_ToolCall(t *testing.T) {
	var result types.CoverLetter
	err := Parse(toolBody(t, `{"coverLetter":"Dear team","highlights":["Go"]}`), ModeToolCall, "cover_letter", &result)
	require.NoError(t, err)
	assert.Equal(t, "Dear team", result.CoverLetter)
	assert.Equal(t, []string{"Go"}, result.Highlights)
}

func TestParse_ToolCallMissing(t *testing.T) {
	var result types.CoverLetter
	err := Parse(contentBody(t, `{"coverLetter":"Dear team","highlights":[]}`), ModeToolCall, "cover_letter", &result)

	var unparsable *UnparsableResultError
	assert.ErrorAs(t, err, &unparsable)
}

func TestParse_Unparsable(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "envelope not json", body: []byte("<html>oops</html>")},
		{name: "no choices", body: []byte(`{"choices":[]}`)},
		{name: "prose only", body: contentBody(t, "I cannot help with that.")},
		{name: "truncated json", body: contentBody(t, "```json\n{\"matchScore\": 8")},
		{name: "empty content", body: contentBody(t, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result types.SkillGapAnalysis
			err := Parse(tt.body, ModeFenced, "skill_gap", &result)

			var unparsable *UnparsableResultError
			assert.ErrorAs(t, err, &unparsable)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	var result types.SkillGapAnalysis
	err := Parse(contentBody(t, `{"matchScore":"high","strengths":[]}`), ModeFenced, "skill_gap", &result)

	var malformed *MalformedResultError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "skill_gap", malformed.Schema)
	assert.NotEmpty(t, malformed.Fields)
	assert.Contains(t, malformed.Details(), "matchScore")
}

func TestParse_SkillGapEmptyListsAreMalformed(t *testing.T) {
	var result types.SkillGapAnalysis
	err := Parse(contentBody(t, `{"matchScore":60,"strengths":[],"gaps":["Go"],"recommendations":[]}`), ModeFenced, "skill_gap", &result)

	var malformed *MalformedResultError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Details(), "strengths")
	assert.Contains(t, malformed.Details(), "recommendations")
}

func TestParse_UnknownSchema(t *testing.T) {
	var result types.SkillGapAnalysis
	err := Parse(contentBody(t, `{}`), ModeDirect, "nope", &result)
	require.Error(t, err)

	_, ok := err.(*MalformedResultError)
	assert.False(t, ok)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "direct", ModeDirect.String())
	assert.Equal(t, "fenced", ModeFenced.String())
	assert.Equal(t, "tool-call", ModeToolCall.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}
