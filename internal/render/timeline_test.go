package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepsFor(tl Timeline, target Target) []Step {
	var out []Step
	for _, s := range tl {
		if s.Mutation.Target == target {
			out = append(out, s)
		}
	}
	return out
}

func TestTimelineTypesName(t *testing.T) {
	r := &ResultView{DiseaseName: "Rust", Percent: 70}
	tl := BuildTimeline(r, DefaultTiming())

	name := stepsFor(tl, TargetName)
	require.Len(t, name, 4)
	for i, s := range name {
		assert.Equal(t, time.Duration(i)*50*time.Millisecond, s.Delay)
	}
	assert.Equal(t, "R", name[0].Mutation.Text)
	assert.Equal(t, "Rust", name[3].Mutation.Text)
}

func TestTimelineCounter(t *testing.T) {
	r := &ResultView{DiseaseName: "x", Percent: 83}
	tl := BuildTimeline(r, DefaultTiming())

	bar := stepsFor(tl, TargetBar)
	require.Len(t, bar, 1)
	assert.Equal(t, 500*time.Millisecond, bar[0].Delay)
	assert.Equal(t, 83, bar[0].Mutation.Value)

	counter := stepsFor(tl, TargetCounter)
	require.NotEmpty(t, counter)
	assert.Equal(t, 500*time.Millisecond, counter[0].Delay)
	assert.Equal(t, 0, counter[0].Mutation.Value)

	last := counter[len(counter)-1]
	assert.Equal(t, 2000*time.Millisecond, last.Delay)
	assert.Equal(t, 83, last.Mutation.Value)

	prev := -1
	for _, s := range counter {
		assert.GreaterOrEqual(t, s.Mutation.Value, prev)
		prev = s.Mutation.Value
	}

	// halfway through, floor(0.5 * 83)
	for _, s := range counter {
		if s.Delay == 1250*time.Millisecond {
			assert.Equal(t, 41, s.Mutation.Value)
		}
	}
}

func TestTimelineStaggerContinuesAcrossLists(t *testing.T) {
	r := &ResultView{
		DiseaseName: "x",
		Causes:      []string{"c1", "c2"},
		Prevention:  []string{"p1"},
		Treatment:   []string{"t1", "t2"},
	}
	tl := BuildTimeline(r, DefaultTiming())

	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	causes := stepsFor(tl, TargetCauses)
	prevention := stepsFor(tl, TargetPrevention)
	treatment := stepsFor(tl, TargetTreatment)

	require.Len(t, causes, 2)
	require.Len(t, prevention, 1)
	require.Len(t, treatment, 2)
	assert.Equal(t, ms(0), causes[0].Delay)
	assert.Equal(t, ms(100), causes[1].Delay)
	assert.Equal(t, ms(200), prevention[0].Delay)
	assert.Equal(t, ms(300), treatment[0].Delay)
	assert.Equal(t, ms(400), treatment[1].Delay)
}

func TestTimelineOrdered(t *testing.T) {
	tl := BuildTimeline(Result(blight()), DefaultTiming())
	for i := 1; i < len(tl); i++ {
		assert.LessOrEqual(t, tl[i-1].Delay, tl[i].Delay)
	}
	assert.Equal(t, 2000*time.Millisecond, tl.Duration())
}

func TestPlayRevealsEverything(t *testing.T) {
	r := Result(blight())
	d := &Display{}
	BuildTimeline(r, DefaultTiming()).Play(d)

	assert.Equal(t, "Tomato Early Blight", d.Name)
	assert.Equal(t, 83, d.BarWidth)
	assert.Equal(t, "83%", d.CounterText())
	assert.Equal(t, []string{"a", "b"}, d.Causes)
	assert.Equal(t, []string{"c"}, d.Prevention)
	assert.Equal(t, []string{"d", "e"}, d.Treatment)

	assert.Equal(t, d, Revealed(r))
}

func TestPlayUntil(t *testing.T) {
	r := &ResultView{DiseaseName: "Rust", Percent: 90, Causes: []string{"a", "b"}}
	tl := BuildTimeline(r, DefaultTiming())
	d := &Display{}

	next := tl.PlayUntil(d, 0, 100*time.Millisecond)
	assert.Equal(t, "Rus", d.Name)
	assert.Equal(t, []string{"a", "b"}, d.Causes)
	assert.Equal(t, 0, d.BarWidth)

	next = tl.PlayUntil(d, next, 499*time.Millisecond)
	assert.Equal(t, "Rust", d.Name)
	assert.Equal(t, 0, d.BarWidth)

	next = tl.PlayUntil(d, next, time.Hour)
	assert.Equal(t, len(tl), next)
	assert.Equal(t, 90, d.BarWidth)
	assert.Equal(t, 90, d.Counter)
}

func TestInstantTiming(t *testing.T) {
	tl := BuildTimeline(Result(blight()), Instant())
	for _, s := range tl {
		assert.Zero(t, s.Delay)
	}
	assert.Len(t, stepsFor(tl, TargetCounter), 1)
}
