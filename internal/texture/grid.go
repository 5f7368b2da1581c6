package texture

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	gridLight  = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	gridDark   = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	gridTop    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	gridLeft   = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	gridBorder = 3
)

// GridLabel returns the label of a grid cell: a column letter and a row
// number counted from the top, e.g. "A1" for the top-left cell.
func GridLabel(col, row int) string {
	letters := ""
	for c := col; ; c = c/26 - 1 {
		letters = string(rune('A'+c%26)) + letters
		if c < 26 {
			break
		}
	}
	return fmt.Sprintf("%s%d", letters, row+1)
}

// DrawAlignmentGrid renders a labeled checkerboard. The top row is edged in
// red and the left column in green so flips and seams are obvious on a model.
func DrawAlignmentGrid(size, cells int) *image.RGBA {
	size = max(size, 1)
	cells = max(cells, 1)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/cells, 1)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := gridLight
			if (x/cell+y/cell)%2 == 1 {
				c = gridDark
			}
			switch {
			case y < gridBorder:
				c = gridTop
			case x < gridBorder:
				c = gridLeft
			}
			img.SetRGBA(x, y, c)
		}
	}

	face := basicfont.Face7x13
	for row := 0; row < cells; row++ {
		for col := 0; col < cells; col++ {
			ink := gridDark
			if (col+row)%2 == 1 {
				ink = gridLight
			}
			d := font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(ink),
				Face: face,
				Dot:  fixed.P(col*cell+gridBorder+2, row*cell+gridBorder+face.Ascent+2),
			}
			d.DrawString(GridLabel(col, row))
		}
	}
	return img
}
