package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"leafscan/internal/render"
	"leafscan/pkg/testutils"
	"leafscan/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blight() *render.ResultView {
	return render.Result(&types.PredictionResult{
		DiseaseName:  "Late Blight",
		Description:  "Dark lesions spreading fast in wet weather.",
		Confidence:   0.91,
		HealthStatus: types.Critical,
		Causes:       []string{"Phytophthora infestans", "High humidity"},
		Prevention:   []string{"Certified seed"},
		Treatment:    []string{"Remove infected plants"},
	})
}

func TestFrameShowsRevealedState(t *testing.T) {
	v := blight()

	empty := Frame(v, &render.Display{})
	assert.Contains(t, empty, v.Badge.Label)
	assert.Contains(t, empty, "0%")
	assert.NotContains(t, empty, "Causes:")

	full := Frame(v, render.Revealed(v))
	assert.Contains(t, full, "Late Blight")
	assert.Contains(t, full, "91%")
	assert.Contains(t, full, "Causes:\n  • Phytophthora infestans\n  • High humidity")
	assert.Contains(t, full, "Prevention:\n  • Certified seed")
	assert.Contains(t, full, "Treatment:\n  • Remove infected plants")
}

func TestAnimateInstant(t *testing.T) {
	var out bytes.Buffer
	slept := 0
	Animate(&out, blight(), render.Instant(), func(time.Duration) { slept++ })

	assert.Zero(t, slept)
	s := out.String()
	assert.Contains(t, s, "• Remove infected plants")
	assert.True(t, strings.HasSuffix(s, "Dark lesions spreading fast in wet weather.\n"))
}

func TestAnimateSleepsForTimeline(t *testing.T) {
	v := blight()
	timing := render.DefaultTiming()

	var out bytes.Buffer
	var total time.Duration
	Animate(&out, v, timing, func(d time.Duration) {
		require.Positive(t, d)
		total += d
	})

	assert.Equal(t, render.BuildTimeline(v, timing).Duration(), total)
	// every frame after the first rewinds the previous one
	frames := strings.Split(out.String(), "\033[J")
	require.Greater(t, len(frames), 1)
	last := testutils.StripANSI(frames[len(frames)-1])
	assert.Contains(t, last, "Late Blight\n")
	assert.Contains(t, last, "91%")
	assert.Contains(t, last, "• Remove infected plants")
	assert.NotContains(t, testutils.StripANSI(out.String()), "\033")
}

func TestBarClamps(t *testing.T) {
	full := Bar(render.StyleSuccess, 150)
	assert.Equal(t, BarCells, strings.Count(full, "█"))
	assert.Zero(t, strings.Count(full, "░"))

	none := Bar(render.StyleDanger, -5)
	assert.Zero(t, strings.Count(none, "█"))
	assert.Equal(t, BarCells, strings.Count(none, "░"))

	half := Bar(render.StyleWarning, 50)
	assert.Equal(t, BarCells/2, strings.Count(half, "█"))
}

func TestPrintHelpers(t *testing.T) {
	var out bytes.Buffer
	PrintSuccess(&out, "saved")
	PrintError(&out, "broken")
	PrintWarning(&out, "careful")
	PrintInfo(&out, "note")

	s := out.String()
	assert.Contains(t, s, "✓ saved")
	assert.Contains(t, s, "✗ broken")
	assert.Contains(t, s, "! careful")
	assert.Contains(t, s, "ℹ note")
	assert.Equal(t, 4, strings.Count(s, "\n"))
}

func TestDrawBoxWrapsContent(t *testing.T) {
	box := DrawBox("Late Blight\nConfidence: 91% (high)")
	assert.Contains(t, box, "Confidence: 91% (high)")
	assert.Contains(t, box, "╭")
	assert.Contains(t, box, "╯")
}
