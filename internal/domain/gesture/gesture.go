// Package gesture models drag input on the head card as data. The rendering
// layer derives transforms purely from the controller's snapshot; no
// imperative style mutation happens here.
package gesture

import (
	"sync"

	"github.com/sportlink/swipedeck/internal/domain/model"
)

// Default gesture configuration constants.
const (
	defaultCommitThreshold = 120.0 // px of horizontal displacement to commit
	defaultSaturationPX    = 160.0 // px at which the highlight reaches full intensity
	defaultRotationFactor  = 0.1   // degrees of rotation per px of displacement
	stackScaleStep         = 0.05  // scale lost per card of depth
	stackOffsetStepPX      = 12.0  // vertical offset per card of depth
)

// Phase is the gesture state over the head card.
type Phase string

// Gesture phases. committed and returned are terminal for the current card;
// Reset moves the controller back to idle for the next one.
const (
	PhaseIdle      Phase = "idle"
	PhaseDragging  Phase = "dragging"
	PhaseCommitted Phase = "committed"
	PhaseReturned  Phase = "returned"
)

// Tint is the highlight color family derived from the drag direction.
type Tint string

// Highlight tints.
const (
	TintNone   Tint = "none"
	TintAccept Tint = "accept"
	TintReject Tint = "reject"
)

// Snapshot is the render state derived from the current gesture.
type Snapshot struct {
	Phase     Phase   `json:"phase"`
	DeltaX    float64 `json:"delta_x"`
	Rotation  float64 `json:"rotation_deg"`
	Tint      Tint    `json:"tint"`
	Intensity float64 `json:"intensity"`
	// Direction is set only while Phase is committed.
	Direction model.Direction `json:"direction,omitempty"`
}

// Transform positions one queued card beneath the head for depth.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetY float64 `json:"offset_y"`
}

// Controller is the state machine over the head card:
// idle -> dragging -> {committed | returned} -> idle (next card).
type Controller struct {
	mu sync.Mutex

	phase     Phase
	startX    float64
	deltaX    float64
	direction model.Direction

	commitThreshold float64
	saturation      float64
	rotationFactor  float64
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithCommitThreshold sets the displacement, in px, past which a release
// commits a decision.
func WithCommitThreshold(px float64) Option {
	return func(c *Controller) {
		if px > 0 {
			c.commitThreshold = px
		}
	}
}

// WithSaturationDistance sets the displacement at which the highlight
// intensity saturates.
func WithSaturationDistance(px float64) Option {
	return func(c *Controller) {
		if px > 0 {
			c.saturation = px
		}
	}
}

// WithRotationFactor sets the degrees of card rotation per px of drag.
func WithRotationFactor(degPerPX float64) Option {
	return func(c *Controller) {
		if degPerPX > 0 {
			c.rotationFactor = degPerPX
		}
	}
}

// NewController creates a gesture controller with configuration options.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		phase:           PhaseIdle,
		commitThreshold: defaultCommitThreshold,
		saturation:      defaultSaturationPX,
		rotationFactor:  defaultRotationFactor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PointerDown starts a drag. Ignored unless the controller is idle, so a
// second pointer cannot hijack a drag or a card mid-exit.
func (c *Controller) PointerDown(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return
	}
	c.phase = PhaseDragging
	c.startX = x
	c.deltaX = 0
}

// PointerMove updates the horizontal displacement while dragging.
func (c *Controller) PointerMove(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseDragging {
		return
	}
	c.deltaX = x - c.startX
}

// PointerUp ends the drag. Past the commit threshold the decision direction
// is sign(deltaX) and ok is true; below it the card returns to neutral and
// no decision is produced.
func (c *Controller) PointerUp() (model.Direction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseDragging {
		return "", false
	}
	if c.deltaX >= c.commitThreshold {
		c.phase = PhaseCommitted
		c.direction = model.DirectionLike
		return c.direction, true
	}
	if c.deltaX <= -c.commitThreshold {
		c.phase = PhaseCommitted
		c.direction = model.DirectionDislike
		return c.direction, true
	}
	c.phase = PhaseReturned
	c.deltaX = 0
	return "", false
}

// ForceCommit commits a decision programmatically, bypassing drag. Allowed
// from idle or mid-drag; downstream handling is identical to a drag commit.
func (c *Controller) ForceCommit(dir model.Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseCommitted {
		return false
	}
	c.phase = PhaseCommitted
	c.direction = dir
	// Park the displacement past the threshold so the exit animation renders
	// in the committed direction.
	if dir == model.DirectionLike {
		c.deltaX = c.commitThreshold
	} else {
		c.deltaX = -c.commitThreshold
	}
	return true
}

// Reset returns the controller to idle for the next head card.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.startX = 0
	c.deltaX = 0
	c.direction = ""
}

// Snapshot derives the full render state from the current gesture.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Phase:    c.phase,
		DeltaX:   c.deltaX,
		Rotation: c.deltaX * c.rotationFactor,
		Tint:     TintNone,
	}
	switch {
	case c.deltaX > 0:
		s.Tint = TintAccept
	case c.deltaX < 0:
		s.Tint = TintReject
	}
	intensity := c.deltaX / c.saturation
	if intensity < 0 {
		intensity = -intensity
	}
	if intensity > 1 {
		intensity = 1
	}
	s.Intensity = intensity
	if c.phase == PhaseCommitted {
		s.Direction = c.direction
	}
	return s
}

// StackTransform returns the depth transform for the card at position i in
// the deck. Position 0 is the interactive head and renders untransformed.
func StackTransform(i int) Transform {
	if i < 0 {
		i = 0
	}
	scale := 1.0 - stackScaleStep*float64(i)
	if scale < 0 {
		scale = 0
	}
	return Transform{
		Scale:   scale,
		OffsetY: stackOffsetStepPX * float64(i),
	}
}
