package types

// Phase is the visible mode of the upload UI. Exactly one is active at a time.
type Phase int

const (
	// Idle shows the drop zone; no file is held
	Idle Phase = iota
	// Previewing shows the held file
	Previewing
	// Analyzing shows the loading indicator while the request is outstanding
	Analyzing
	// Results shows the rendered classification
	Results
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Previewing:
		return "previewing"
	case Analyzing:
		return "analyzing"
	case Results:
		return "results"
	}
	return "unknown"
}

// Key is a keyboard shortcut understood by the upload machine.
type Key int

const (
	KeyEscape Key = iota
	KeyEnter
)
