package filter

import "github.com/gogpu/gg"

// Stage is one step of a filter chain.
// Apply reads src and writes dst; the two pixmaps have the same size and
// are never the same buffer.
type Stage interface {
	Name() string
	Apply(src, dst *gg.Pixmap)
}

// Chain represents multiple stages applied in sequence.
// Stages are applied in order from first to last.
type Chain struct {
	stages []Stage
}

// NewChain creates a new chain from the given stages. Nil stages are skipped.
func NewChain(stages ...Stage) *Chain {
	c := &Chain{stages: make([]Stage, 0, len(stages))}
	for _, s := range stages {
		c.Add(s)
	}
	return c
}

// Add appends a stage to the chain.
func (c *Chain) Add(s Stage) {
	if s != nil {
		c.stages = append(c.stages, s)
	}
}

// Len returns the number of stages in the chain.
func (c *Chain) Len() int {
	return len(c.stages)
}

// IsEmpty returns true if the chain has no stages.
func (c *Chain) IsEmpty() bool {
	return len(c.stages) == 0
}

// Names returns the stage names in application order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}

// Apply runs src through every stage and returns a new pixmap holding the
// result. src is never modified. An empty chain returns a copy of src.
func (c *Chain) Apply(src *gg.Pixmap) *gg.Pixmap {
	out := gg.NewPixmap(src.Width(), src.Height())
	if len(c.stages) == 0 {
		copyPixmap(src, out)
		return out
	}

	if len(c.stages) == 1 {
		c.stages[0].Apply(src, out)
		return out
	}

	// Ping-pong between out and a scratch buffer so that the final stage
	// always lands in out.
	scratch := gg.NewPixmap(src.Width(), src.Height())
	current, next := out, scratch
	if len(c.stages)%2 == 0 {
		current, next = scratch, out
	}

	c.stages[0].Apply(src, current)
	for _, s := range c.stages[1:] {
		s.Apply(current, next)
		current, next = next, current
	}

	return current
}
