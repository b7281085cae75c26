package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML_PreservesParagraphBreaks(t *testing.T) {
	raw := "<p>First paragraph.</p><p>Second paragraph.</p>"
	got := StripHTML(raw)
	assert.Contains(t, got, "First paragraph.")
	assert.Contains(t, got, "Second paragraph.")
	assert.Contains(t, got, "\n")
}

func TestStripHTML_UnescapesEntities(t *testing.T) {
	raw := "<p>Rates &amp; tariffs rose &mdash; sharply.</p>"
	got := StripHTML(raw)
	assert.Contains(t, got, "&")
	assert.NotContains(t, got, "&amp;")
}

func TestNormalizeBody_Deterministic(t *testing.T) {
	raw := "<div>Ocean freight rates   climbed\n\n\nthis week.</div>"
	a := NormalizeBody(raw)
	b := NormalizeBody(raw)
	assert.Equal(t, a, b)
	assert.NotContains(t, a, "   ")
}

func TestNormalizeTitle_Desuffix(t *testing.T) {
	got := NormalizeTitle("Red Sea shipping disruptions push rates higher | Maritime Gazette", "Maritime Gazette")
	assert.Equal(t, "Red Sea shipping disruptions push rates higher", got)
}

func TestNormalizeTitle_DesuffixDoesNotMatchDifferentSource(t *testing.T) {
	got := NormalizeTitle("Red Sea shipping disruptions push rates higher | Other Outlet", "Maritime Gazette")
	assert.Equal(t, "Red Sea shipping disruptions push rates higher | Other Outlet", got)
}

func TestNormalizeTitle_NoSourceNameLeavesTitleUnchanged(t *testing.T) {
	got := NormalizeTitle("Red Sea shipping disruptions push rates higher", "")
	assert.Equal(t, "Red Sea shipping disruptions push rates higher", got)
}

func TestFoldWidth_FullWidthPunctuation(t *testing.T) {
	got := NormalizeBody("港口吞吐量增长迅速，货运需求上升。")
	assert.NotContains(t, got, "，")
	assert.NotContains(t, got, "。")
}
