package intake

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"

	"leafscan/internal/errors"
	"leafscan/pkg/types"
)

// Thumbnail decodes the file and scales it to width pixels, keeping the
// aspect ratio.
func Thumbnail(file *types.UploadedFile, width int) (image.Image, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, errors.ErrNoFileLoaded
	}
	if width <= 0 {
		return nil, errors.Newf("invalid thumbnail width %d", width)
	}
	img, _, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return resize.Resize(uint(width), 0, img, resize.Bilinear), nil
}

// HalfBlocks renders img for a terminal: each cell is an upper half block
// whose foreground is the upper pixel and background the lower one.
func HalfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hex(img, x, y))
			if y+1 < b.Max.Y {
				style = style.Background(hex(img, x, y+1))
			}
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hex(img image.Image, x, y int) lipgloss.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
