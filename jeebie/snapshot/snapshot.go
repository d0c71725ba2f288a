// Package snapshot encodes a frame buffer as a grayscale PNG, used by the
// integration test suite to produce golden images and diff failures.
package snapshot

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/valerio/go-jeebie/jeebie/display"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// SaveGrayPNG writes frame to path as an 8-bit grayscale PNG, mapping each
// of the four DMG shades to the same gray levels used elsewhere for
// grayscale conversion (display.GrayscaleWhite and friends).
func SaveGrayPNG(frame *video.FrameBuffer, path string) error {
	img := image.NewGray(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))

	data := frame.ToSlice()
	for y := range video.FramebufferHeight {
		for x := range video.FramebufferWidth {
			var gray uint8
			switch data[y*video.FramebufferWidth+x] {
			case uint32(video.BlackColor):
				gray = display.GrayscaleBlack
			case uint32(video.DarkGreyColor):
				gray = display.GrayscaleDarkGray
			case uint32(video.LightGreyColor):
				gray = display.GrayscaleLightGray
			case uint32(video.WhiteColor):
				gray = display.GrayscaleWhite
			}
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
