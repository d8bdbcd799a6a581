package astro

// Body identifies a tracked placement.
type Body string

const (
	Sun     Body = "sun"
	Moon    Body = "moon"
	Rising  Body = "rising"
	Venus   Body = "venus"
	Mars    Body = "mars"
	Jupiter Body = "jupiter"
)

// Bodies lists every tracked body in a stable order.
var Bodies = []Body{Sun, Moon, Rising, Venus, Mars, Jupiter}

// IsValid reports whether b is a tracked body.
func (b Body) IsValid() bool {
	for _, known := range Bodies {
		if b == known {
			return true
		}
	}
	return false
}

// Placements maps each body to its sign.
type Placements map[Body]Sign

// Get returns the sign for b, or Unknown when b is absent.
func (p Placements) Get(b Body) Sign {
	if s, ok := p[b]; ok {
		return s
	}
	return Unknown
}

// unknownPlacements returns a set with every tracked body set to Unknown.
func unknownPlacements() Placements {
	p := make(Placements, len(Bodies))
	for _, b := range Bodies {
		p[b] = Unknown
	}
	return p
}

// Clone returns an independent copy of p.
func (p Placements) Clone() Placements {
	if p == nil {
		return nil
	}
	c := make(Placements, len(p))
	for b, s := range p {
		c[b] = s
	}
	return c
}
