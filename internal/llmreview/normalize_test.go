package llmreview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_StringSuggestedFixPassesThrough(t *testing.T) {
	content := `Here is my answer:
{
  "suggestions": [
    {"checkKey": "security-hardcoded-secret", "severity": "BLOCKER", "title": "t", "rationale": "r", "suggestedFix": "use env vars instead"}
  ]
}
Thanks.`

	out, err := ParseResponse(content)
	require.NoError(t, err)
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "use env vars instead", out.Suggestions[0].SuggestedFix)
}

func TestParseResponse_ArraySuggestedFixJoinedAndBulleted(t *testing.T) {
	content := `{"suggestions": [{"checkKey": "x", "suggestedFix": ["step one", "step two"]}]}`

	out, err := ParseResponse(content)
	require.NoError(t, err)
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "- step one\n- step two", out.Suggestions[0].SuggestedFix)
}

func TestParseResponse_EmptyArraySuggestedFixFallsBack(t *testing.T) {
	content := `{"suggestions": [{"checkKey": "x", "suggestedFix": []}]}`

	out, err := ParseResponse(content)
	require.NoError(t, err)
	assert.Equal(t, "No fix suggestion provided.", out.Suggestions[0].SuggestedFix)
}

func TestParseResponse_MissingSuggestedFixFallsBack(t *testing.T) {
	content := `{"suggestions": [{"checkKey": "x"}]}`

	out, err := ParseResponse(content)
	require.NoError(t, err)
	assert.Equal(t, "No fix suggestion provided.", out.Suggestions[0].SuggestedFix)
}

func TestParseResponse_InvalidJSONReturnsError(t *testing.T) {
	_, err := ParseResponse("not json at all")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestExtractJSON_StripsSurroundingProse(t *testing.T) {
	jsonStr, err := ExtractJSON("sure, here you go: {\"a\": 1} hope that helps")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, jsonStr)
}
