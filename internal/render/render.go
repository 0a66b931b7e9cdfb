// Package render maps upload machine state to what a front-end must show.
// Render is pure; animations are expressed as a Timeline of delayed
// mutations that front-ends schedule on their own clock and tests play
// synchronously.
package render

import (
	"leafscan/internal/upload"
	"leafscan/pkg/types"
)

// View is the visual output required for one machine snapshot.
type View struct {
	Phase    types.Phase
	DropZone bool
	Preview  bool
	Loading  bool
	Results  bool

	File   *PreviewView
	Result *ResultView
}

// PreviewView describes the held image.
type PreviewView struct {
	Name       string
	MediaType  string
	Size       string
	Dimensions string
	Camera     string
	TakenAt    string
	Data       []byte
}

// ResultView is the fully revealed classification panel.
type ResultView struct {
	DiseaseName string
	Description string
	Percent     int
	Tier        Tier
	Bar         Style
	Badge       Badge
	Causes      []string
	Prevention  []string
	Treatment   []string
}

// Render maps a snapshot to its view.
func Render(s upload.Snapshot) View {
	v := View{Phase: s.Phase}

	switch s.Phase {
	case types.Idle:
		v.DropZone = true
	case types.Previewing:
		v.Preview = true
	case types.Analyzing:
		v.Loading = true
	case types.Results:
		v.Results = true
	}

	if s.File != nil {
		v.File = Preview(s.File)
	}
	if s.Phase == types.Results && s.Result != nil {
		v.Result = Result(s.Result)
	}
	return v
}

// Preview builds the preview of a file
func Preview(f *types.UploadedFile) *PreviewView {
	return &PreviewView{
		Name:       f.Name,
		MediaType:  f.MediaType,
		Size:       f.HumanSize(),
		Dimensions: f.Dimensions(),
		Camera:     f.Meta.CameraModel,
		TakenAt:    f.Meta.TakenAt,
		Data:       f.Data,
	}
}

// Result builds the result panel of a prediction
func Result(r *types.PredictionResult) *ResultView {
	percent := ConfidencePercent(r.Confidence)
	tier := TierFor(percent)
	return &ResultView{
		DiseaseName: r.DiseaseName,
		Description: r.Description,
		Percent:     percent,
		Tier:        tier,
		Bar:         tier.Style(),
		Badge:       BadgeFor(r.HealthStatus),
		Causes:      append([]string(nil), r.Causes...),
		Prevention:  append([]string(nil), r.Prevention...),
		Treatment:   append([]string(nil), r.Treatment...),
	}
}
