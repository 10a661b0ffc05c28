package record

// Color is an RGBA draw colour. Each channel crosses the boundary as its own
// Byte record, so a call reading a colour back has one output per channel.
type Color struct {
	R, G, B, A uint8
}

// Channels returns the channel bytes in R, G, B, A order.
func (c Color) Channels() [4]byte {
	return [4]byte{c.R, c.G, c.B, c.A}
}

// ColorFrom builds a colour from up to four channel bytes. Missing channels
// are zero, except alpha which defaults to opaque.
func ColorFrom(channels ...byte) Color {
	c := Color{A: 0xFF}
	dst := []*uint8{&c.R, &c.G, &c.B, &c.A}
	for i, b := range channels {
		if i == len(dst) {
			break
		}
		*dst[i] = b
	}
	return c
}
