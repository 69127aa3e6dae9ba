package layout

// Dim is the logical size of the matrix in LEDs.
type Dim struct{ X, Y int }

// Serpentine describes how the physical wiring snakes through the board.
type Serpentine struct {
	// XFlipEveryRow reverses the X direction on every other physical row,
	// matching boards where a single data wire runs back and forth.
	XFlipEveryRow bool
	// YFlip inverts the Y axis so the logical origin is the bottom-left
	// corner while the first LED on the wire sits at the top of the board.
	YFlip bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// Default returns the layout of the 5x5 board: serpentine rows with the
// first wire LED at the top-left when viewed from the front.
func Default() Layout {
	return Layout{
		Dim:   Dim{X: 5, Y: 5},
		Order: Serpentine{XFlipEveryRow: true, YFlip: true},
	}
}

// Index maps logical x,y -> linear LED index (0..Count-1) in wire order.
// Defined only for in-bounds coordinates; callers guard with InBounds.
func (l Layout) Index(x, y int) int {
	yy := y
	if l.Order.YFlip {
		yy = l.Dim.Y - 1 - y
	}
	xx := x
	if l.Order.XFlipEveryRow && yy%2 == 1 {
		xx = l.Dim.X - 1 - x
	}
	return yy*l.Dim.X + xx
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y
}

func (l Layout) InBounds(x, y int) bool {
	return x >= 0 && x < l.Dim.X && y >= 0 && y < l.Dim.Y
}
