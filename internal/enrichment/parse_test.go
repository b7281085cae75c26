package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction_PlainJSON(t *testing.T) {
	raw := `{"summary_en":"hello","summary_zh":"你好","sentiment":"neutral","urgency":"low"}`
	result, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.SummaryEN)
	assert.Equal(t, "你好", result.SummaryZH)
}

func TestParseExtraction_FencedJSON(t *testing.T) {
	raw := "```json\n{\"summary_en\":\"hello\",\"summary_zh\":\"你好\"}\n```"
	result, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.SummaryEN)
}

func TestParseExtraction_BareFence(t *testing.T) {
	raw := "```\n{\"summary_en\":\"hello\"}\n```"
	result, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.SummaryEN)
}

func TestParseExtraction_WhitespacePadded(t *testing.T) {
	raw := "  \n\t{\"summary_en\":\"hello\"}\n  "
	result, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.SummaryEN)
}

func TestParseExtraction_ProseWrappedRejected(t *testing.T) {
	raw := "Sure, here is the JSON you asked for:\n{\"summary_en\":\"hello\"}"
	_, err := ParseExtraction(raw)
	assert.Error(t, err)
}

func TestParseExtraction_NotJSON(t *testing.T) {
	_, err := ParseExtraction("not json at all")
	assert.Error(t, err)
}
