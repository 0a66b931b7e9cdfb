package render

import (
	"fmt"
	"sort"
	"time"
)

// Timing holds the animation parameters of the result panel.
type Timing struct {
	TypeInterval    time.Duration // per typed character of the disease name
	CounterDelay    time.Duration // before the bar fills and the counter starts
	CounterDuration time.Duration // counter run time from 0 to the percentage
	CounterFrame    time.Duration // counter refresh interval
	Stagger         time.Duration // between revealed list items
}

// DefaultTiming is 50ms typing, a 1.5s counter starting after 500ms and a
// 100ms list stagger.
func DefaultTiming() Timing {
	return Timing{
		TypeInterval:    50 * time.Millisecond,
		CounterDelay:    500 * time.Millisecond,
		CounterDuration: 1500 * time.Millisecond,
		CounterFrame:    50 * time.Millisecond,
		Stagger:         100 * time.Millisecond,
	}
}

// Instant places every step at zero delay.
func Instant() Timing {
	return Timing{CounterFrame: time.Millisecond}
}

// Target is the part of the result panel a mutation changes.
type Target int

const (
	TargetName Target = iota
	TargetBar
	TargetCounter
	TargetCauses
	TargetPrevention
	TargetTreatment
)

func (t Target) String() string {
	switch t {
	case TargetName:
		return "name"
	case TargetBar:
		return "bar"
	case TargetCounter:
		return "counter"
	case TargetCauses:
		return "causes"
	case TargetPrevention:
		return "prevention"
	case TargetTreatment:
		return "treatment"
	}
	return "unknown"
}

// Mutation is one visual change. Text carries the typed name or the
// appended list item; Value carries the bar width or counter value.
type Mutation struct {
	Target Target
	Text   string
	Value  int
}

// Step is a mutation scheduled at Delay after the panel is first shown.
type Step struct {
	Delay    time.Duration
	Mutation Mutation
}

// Timeline is a sequence of steps ordered by delay. Steps with equal delay
// keep their build order.
type Timeline []Step

// BuildTimeline lays out the reveal of a result panel:
//   - the disease name typed one rune per TypeInterval;
//   - after CounterDelay the bar is set to the percentage and a counter runs
//     from 0 up to it over CounterDuration;
//   - list items revealed every Stagger, numbering continuing across causes,
//     prevention and treatment.
func BuildTimeline(r *ResultView, t Timing) Timeline {
	var tl Timeline

	runes := []rune(r.DiseaseName)
	for i := range runes {
		tl = append(tl, Step{
			Delay:    time.Duration(i) * t.TypeInterval,
			Mutation: Mutation{Target: TargetName, Text: string(runes[:i+1])},
		})
	}

	tl = append(tl, Step{Delay: t.CounterDelay, Mutation: Mutation{Target: TargetBar, Value: r.Percent}})
	tl = append(tl, counterSteps(r.Percent, t)...)

	offset := 0
	lists := []struct {
		target Target
		items  []string
	}{
		{TargetCauses, r.Causes},
		{TargetPrevention, r.Prevention},
		{TargetTreatment, r.Treatment},
	}
	for _, list := range lists {
		for i, item := range list.items {
			tl = append(tl, Step{
				Delay:    time.Duration(offset+i) * t.Stagger,
				Mutation: Mutation{Target: list.target, Text: item},
			})
		}
		offset += len(list.items)
	}

	sort.SliceStable(tl, func(i, j int) bool { return tl[i].Delay < tl[j].Delay })
	return tl
}

func counterSteps(percent int, t Timing) []Step {
	if t.CounterDuration <= 0 || t.CounterFrame <= 0 {
		return []Step{{Delay: t.CounterDelay, Mutation: Mutation{Target: TargetCounter, Value: percent}}}
	}

	var steps []Step
	for elapsed := time.Duration(0); ; elapsed += t.CounterFrame {
		if elapsed > t.CounterDuration {
			elapsed = t.CounterDuration
		}
		progress := float64(elapsed) / float64(t.CounterDuration)
		steps = append(steps, Step{
			Delay:    t.CounterDelay + elapsed,
			Mutation: Mutation{Target: TargetCounter, Value: int(progress * float64(percent))},
		})
		if elapsed == t.CounterDuration {
			break
		}
	}
	// Guard against float truncation on the final frame
	steps[len(steps)-1].Mutation.Value = percent
	return steps
}

// Duration is the delay of the last step
func (tl Timeline) Duration() time.Duration {
	if len(tl) == 0 {
		return 0
	}
	return tl[len(tl)-1].Delay
}

// Play applies every step in order
func (tl Timeline) Play(d *Display) {
	for _, s := range tl {
		d.Apply(s.Mutation)
	}
}

// PlayUntil applies the steps due at elapsed, starting from index from, and
// returns the index of the first step not yet applied.
func (tl Timeline) PlayUntil(d *Display, from int, elapsed time.Duration) int {
	i := from
	for ; i < len(tl) && tl[i].Delay <= elapsed; i++ {
		d.Apply(tl[i].Mutation)
	}
	return i
}

// Display is the progressively revealed state of the result panel.
type Display struct {
	Name       string
	BarWidth   int
	Counter    int
	Causes     []string
	Prevention []string
	Treatment  []string
}

// Apply performs one mutation
func (d *Display) Apply(m Mutation) {
	switch m.Target {
	case TargetName:
		d.Name = m.Text
	case TargetBar:
		d.BarWidth = m.Value
	case TargetCounter:
		d.Counter = m.Value
	case TargetCauses:
		d.Causes = append(d.Causes, m.Text)
	case TargetPrevention:
		d.Prevention = append(d.Prevention, m.Text)
	case TargetTreatment:
		d.Treatment = append(d.Treatment, m.Text)
	}
}

// CounterText is the counter as displayed, e.g. "83%"
func (d *Display) CounterText() string {
	return fmt.Sprintf("%d%%", d.Counter)
}

// Revealed returns the display of a result with every step applied
func Revealed(r *ResultView) *Display {
	d := &Display{}
	BuildTimeline(r, Instant()).Play(d)
	return d
}
