// Package textrender converts a frame buffer into a half-block Unicode text
// representation, used by headless runs to dump a frame without a terminal
// or windowing backend.
package textrender

import "github.com/valerio/go-jeebie/jeebie/video"

// shadeOf maps a DMG color to a 0 (black) .. 3 (white) shade index.
func shadeOf(pixel uint32) int {
	switch video.GBColor(pixel) {
	case video.BlackColor:
		return 0
	case video.DarkGreyColor:
		return 1
	case video.LightGreyColor:
		return 2
	case video.WhiteColor:
		return 3
	default:
		return 0
	}
}

// halfBlockChar picks the block character for a pair of vertically stacked
// pixels, trading per-pixel precision for cramming two rows into one
// character cell.
func halfBlockChar(top, bottom int) rune {
	switch {
	case top == bottom:
		return '█'
	case top == 3 && bottom != 3:
		return '▄'
	case top != 3 && bottom == 3:
		return '▀'
	default:
		return '▀'
	}
}

// Lines renders fb as one string per pair of pixel rows (72 lines for the
// DMG's 144-pixel-tall screen).
func Lines(fb *video.FrameBuffer) []string {
	data := fb.ToSlice()
	textHeight := (video.FramebufferHeight + 1) / 2
	lines := make([]string, textHeight)

	for row := 0; row < textHeight; row++ {
		line := make([]rune, video.FramebufferWidth)
		topY := row * 2
		bottomY := topY + 1

		for x := 0; x < video.FramebufferWidth; x++ {
			top := shadeOf(data[topY*video.FramebufferWidth+x])
			bottom := 3
			if bottomY < video.FramebufferHeight {
				bottom = shadeOf(data[bottomY*video.FramebufferWidth+x])
			}
			line[x] = halfBlockChar(top, bottom)
		}

		lines[row] = string(line)
	}

	return lines
}
