package quant

// Cache bit depths.
const (
	DefaultCacheBits = 5
	MinCacheBits     = 1
	MaxCacheBits     = 8
)

// Cache is the nearest-color lookup table of one quantization job. Colors are
// keyed by the top Bits bits of each channel, so 1<<(3*Bits) slots exist. A
// slot holds the palette index resolved for the first color queried in its
// bucket, or -1 when nothing has been resolved yet.
//
// A Cache is bound to the palette and metric it was filled against and must
// not outlive the job that created it.
type Cache struct {
	Slots []int32
	Bits  int
	shift uint
}

// NewCache allocates a Cache with the given number of bits per channel,
// clamped to [MinCacheBits, MaxCacheBits].
func NewCache(bits int) *Cache {
	bits = clampBits(bits)
	c := &Cache{
		Slots: make([]int32, 1<<(3*bits)),
		Bits:  bits,
		shift: uint(8 - bits),
	}
	c.Reset()
	return c
}

func clampBits(bits int) int {
	if bits < MinCacheBits {
		return MinCacheBits
	}
	if bits > MaxCacheBits {
		return MaxCacheBits
	}
	return bits
}

// Key computes the slot index of a color. Channels must be in [0,255].
func (c *Cache) Key(r, g, b int) int {
	bits := uint(c.Bits)
	return (r>>c.shift)<<(2*bits) | (g>>c.shift)<<bits | b>>c.shift
}

// Lookup returns the palette index stored at key, or -1.
func (c *Cache) Lookup(key int) int {
	return int(c.Slots[key])
}

// Store records the palette index for key.
func (c *Cache) Store(key, index int) {
	c.Slots[key] = int32(index)
}

// Reset marks every slot unresolved.
func (c *Cache) Reset() {
	for i := range c.Slots {
		c.Slots[i] = -1
	}
}

// Len returns the number of resolved slots.
func (c *Cache) Len() int {
	n := 0
	for _, v := range c.Slots {
		if v >= 0 {
			n++
		}
	}
	return n
}
