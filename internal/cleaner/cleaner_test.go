package cleaner

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "Hi there.", Clean("Hi there."))
	assert.Equal(t, "", Clean(""))
}

func TestCleanKeepsBodyText(t *testing.T) {
	in := "The government announced a fresh infrastructure plan for the coastal districts on Monday."
	assert.Equal(t, in, Clean(in))
}

func TestCleanStripsMarkup(t *testing.T) {
	in := "<p>The committee approved</p> <b>the final budget proposal</b> for this year."
	out := Clean(in)
	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "The committee approved the final budget proposal")
}

func TestCleanReadLaterMarker(t *testing.T) {
	tail := strings.TrimSpace(strings.Repeat("word ", 60))
	in := "Top Picks Trending READ LATER SEE ALL " + tail

	out := Clean(in)
	assert.Equal(t, tail, out)
}

func TestCleanReadLaterShortTailKept(t *testing.T) {
	// Too few words after the marker means the split is not trusted.
	in := "The council met yesterday to discuss the annual water supply budget READ LATER SEE ALL short tail"
	out := Clean(in)
	assert.Contains(t, out, "The council met yesterday")
}

func TestCleanLeadingLocation(t *testing.T) {
	in := "CHENNAI: The city corporation launched a drive to clear stormwater drains before the monsoon."
	out := Clean(in)
	assert.False(t, strings.HasPrefix(out, "CHENNAI"))
	assert.True(t, strings.HasPrefix(out, "The city corporation"))
}

func TestCleanDropsChromeLines(t *testing.T) {
	in := strings.Join([]string{
		"The state assembly passed the amendment after a long debate on Thursday evening.",
		"Follow us on social media",
		"Photo Credit: Staff Photographer",
		"Special Correspondent",
		"Members from both benches spoke in favour of the revised clauses during the session.",
	}, "\n")

	out := Clean(in)
	assert.Contains(t, out, "assembly passed the amendment")
	assert.Contains(t, out, "both benches spoke in favour")
	assert.NotContains(t, out, "Follow us")
	assert.NotContains(t, out, "Photo Credit")
	assert.NotContains(t, out, "Special Correspondent")
}

func TestCleanPaywallStopsProcessing(t *testing.T) {
	in := strings.Join([]string{
		"The ruling was delivered by a two-judge bench earlier in the day at the high court.",
		"Already have an account? Log in here.",
		"This trailing text belongs to the teaser widget and must never survive.",
	}, "\n")

	out := Clean(in)
	assert.Contains(t, out, "two-judge bench")
	assert.NotContains(t, out, "teaser widget")
}

func TestCleanShortLinesNearTop(t *testing.T) {
	in := strings.Join([]string{
		"Menu",
		"Trending",
		"The irrigation department released water from the reservoir for the third time this season.",
	}, "\n")

	out := Clean(in)
	assert.Equal(t, "The irrigation department released water from the reservoir for the third time this season.", out)
}

func TestCleanPublisherArtifacts(t *testing.T) {
	assert.Equal(t, "Big flood warning issued", Clean("Big flood warning issued - The Hindu"))

	out := Clean("The Hindu Bureau reported that the village council approved the road works yesterday.")
	assert.NotContains(t, out, "The Hindu Bureau")
	assert.Contains(t, out, "village council approved")
}

func TestCleanPunctuationSpacing(t *testing.T) {
	in := "He said .. that the plan , once approved , will start soon ."
	assert.Equal(t, "He said. that the plan, once approved, will start soon.", Clean(in))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcde", Truncate("abcdefgh", 5))

	// The limit counts characters, and the cut never splits one.
	in := strings.Repeat("₹", 8)
	out := Truncate(in, 5)
	assert.Equal(t, strings.Repeat("₹", 5), out)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 5, utf8.RuneCountInString(out))

	assert.Equal(t, "साल भर", Truncate("साल भर की कमाई", 6))
}
