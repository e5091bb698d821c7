package colorfx

import "math/rand"

// assignment is one fixture receiving one palette color.
type assignment struct {
	fixture string
	color   string
}

// picker chooses colors for consecutive beats without repeating the previous one.
type picker struct {
	rng       *rand.Rand
	last      string
	byFixture map[string]string
	beat      int
}

func newPicker(rng *rand.Rand) *picker {
	return &picker{rng: rng, byFixture: map[string]string{}}
}

// pick returns a random name different from last when possible.
func (p *picker) pick(names []string, last string) string {
	if len(names) == 0 {
		return Black
	}
	candidates := make([]string, 0, len(names))
	for _, n := range names {
		if n != last {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return names[0]
	}
	return candidates[p.rng.Intn(len(candidates))]
}

// uniform gives every fixture the same new color.
func (p *picker) uniform(fixtures, names []string) []assignment {
	p.last = p.pick(names, p.last)
	out := make([]assignment, len(fixtures))
	for i, f := range fixtures {
		out[i] = assignment{fixture: f, color: p.last}
	}
	return out
}

// independent gives each fixture its own new color.
func (p *picker) independent(fixtures, names []string) []assignment {
	out := make([]assignment, len(fixtures))
	for i, f := range fixtures {
		c := p.pick(names, p.byFixture[f])
		p.byFixture[f] = c
		out[i] = assignment{fixture: f, color: c}
	}
	return out
}

// alternating lights even and odd fixtures on alternate beats, the other half black.
func (p *picker) alternating(fixtures, names []string) []assignment {
	p.last = p.pick(names, p.last)
	lit := p.beat % 2
	p.beat++
	out := make([]assignment, len(fixtures))
	for i, f := range fixtures {
		c := Black
		if i%2 == lit {
			c = p.last
		}
		out[i] = assignment{fixture: f, color: c}
	}
	return out
}
