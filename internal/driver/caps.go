package driver

// Caps is the capability flag set a driver record advertises. Display,
// memman, and pixconv drivers all use the same bit space so the
// PHYS_MEM compatibility check in the pixel-format pipeline can compare
// them directly.
type Caps uint

const (
	Fullscreen Caps = 1 << iota // display: driver wants fullscreen output
	DoubleBuf                   // display: double-buffering available
	PhysMem                     // display/memman/pixconv: requires/produces physical (DMA) addresses
	PrivMem                     // memman: allocates from a private/reserved memory pool
	NoConv                      // display: accepts the source pixel format natively, skip pixconv
)

// Has reports whether all bits in want are set in c.
func (c Caps) Has(want Caps) bool { return c&want == want }
