// Package testutils holds fixtures shared by the leafscan tests: small
// images on disk and a fake prediction service.
package testutils

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"leafscan/pkg/types"

	"github.com/stretchr/testify/require"
)

// PNG encodes a w by h image filled with leaf green
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 60, G: 140, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// WritePNG writes a w by h PNG named name into dir and returns its path
func WritePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, PNG(t, w, h), 0644))
	return path
}

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	return ansi.ReplaceAllString(str, "")
}

// Service is a fake prediction service. It answers POST /predict with
// Result, or with Status and an error body when Status is not 200, and
// GET /health with Health.
type Service struct {
	*httptest.Server

	mu      sync.Mutex
	Status  int
	Result  types.PredictionResult
	Health  types.HealthReport
	uploads []string
}

// NewService starts a fake service that is closed when the test ends
func NewService(t *testing.T, result types.PredictionResult) *Service {
	t.Helper()
	s := &Service{
		Status: http.StatusOK,
		Result: result,
		Health: types.HealthReport{
			Status:                "healthy",
			ModelLoaded:           true,
			DiseaseDatabaseLoaded: true,
			TotalClasses:          38,
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetStatus makes /predict fail with status
func (s *Service) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
}

// Uploads returns the file names received by /predict
func (s *Service) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

func (s *Service) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/predict":
		name := ""
		if _, hdr, err := r.FormFile("file"); err == nil {
			name = hdr.Filename
		}
		s.uploads = append(s.uploads, name)
		if s.Status != http.StatusOK {
			w.WriteHeader(s.Status)
			_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "model exploded"})
			return
		}
		_ = json.NewEncoder(w).Encode(s.Result)
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		_ = json.NewEncoder(w).Encode(s.Health)
	default:
		http.NotFound(w, r)
	}
}
