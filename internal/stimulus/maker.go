package stimulus

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ironsheep/searchstims/internal/placement"
)

// Layout is everything needed to render one display: item centers, roles and
// classes. It is produced by the planning pass and consumed by Render.
type Layout struct {
	Placement placement.RenderedPlacement
	Roles     []placement.Role
	Classes   []string
}

// Maker renders the displays of one stimulus type.
type Maker struct {
	name       string
	engine     *placement.Engine
	renderer   ItemRenderer
	background color.RGBA
}

// NewMaker wires an engine and a renderer together under a stimulus name.
func NewMaker(name string, engine *placement.Engine, renderer ItemRenderer, background color.RGBA) *Maker {
	return &Maker{name: name, engine: engine, renderer: renderer, background: background}
}

// Name returns the stimulus name used in file names and ledgers.
func (m *Maker) Name() string {
	return m.name
}

// Engine returns the placement engine.
func (m *Maker) Engine() *placement.Engine {
	return m.engine
}

// PlanGroup plans numImages displays with setSize items and numTarget targets.
//
// On a grid engine the group goes through Engine.Plan, so unique is honored and an
// infeasible request fails before anything is drawn. On a free-field engine each
// display is sampled independently and unique has no effect.
func (m *Maker) PlanGroup(setSize, numTarget, numImages int, unique bool) ([]Layout, error) {
	if numTarget < 0 || numTarget > setSize {
		return nil, fmt.Errorf("%w: need 0 <= targets <= set size, got %d targets for set size %d",
			placement.ErrInvalidTargetCount, numTarget, setSize)
	}

	var placements []placement.RenderedPlacement
	if m.engine.Grid() != nil {
		plan, err := m.engine.Plan(setSize, numImages, unique)
		if err != nil {
			return nil, err
		}
		placements = make([]placement.RenderedPlacement, 0, len(plan))
		for _, a := range plan {
			placements = append(placements, m.engine.Place(a))
		}
	} else {
		placements = make([]placement.RenderedPlacement, 0, numImages)
		for i := 0; i < numImages; i++ {
			p, err := m.engine.FreeField(setSize)
			if err != nil {
				return nil, err
			}
			placements = append(placements, p)
		}
	}

	rng := m.engine.Rand()
	layouts := make([]Layout, 0, len(placements))
	for _, p := range placements {
		roles, err := placement.AssignRoles(rng, setSize, numTarget)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, Layout{
			Placement: p,
			Roles:     roles.All(),
			Classes:   m.renderer.Symbols(rng, roles),
		})
	}
	return layouts, nil
}

// Render draws l onto a fresh surface and derives its labels.
// It does not touch the engine and is safe to call from several goroutines.
func (m *Maker) Render(l Layout) (*Stimulus, error) {
	p := l.Placement
	if len(l.Roles) != p.Len() || len(l.Classes) != p.Len() || len(p.CenterY) != p.Len() {
		return nil, fmt.Errorf("layout has %d centers, %d roles and %d classes", p.Len(), len(l.Roles), len(l.Classes))
	}

	cfg := m.engine.Config()
	surface := image.NewRGBA(image.Rect(0, 0, cfg.Window.W, cfg.Window.H))
	draw.Draw(surface, surface.Bounds(), &image.Uniform{C: m.background}, image.Point{}, draw.Src)

	s := &Stimulus{
		Surface:           surface,
		Items:             make([]Item, 0, p.Len()),
		TargetIndices:     [][2]int{},
		DistractorIndices: [][2]int{},
	}
	for i := 0; i < p.Len(); i++ {
		center := image.Pt(p.CenterX[i], p.CenterY[i])
		it := Item{
			Index:  i,
			Role:   l.Roles[i],
			Class:  l.Classes[i],
			Center: center,
			BBox:   ItemBBox(center, cfg.ItemBBox),
		}
		m.renderer.Draw(surface, it)
		s.Items = append(s.Items, it)
		if it.Role == placement.Target {
			s.TargetIndices = append(s.TargetIndices, [2]int{center.X, center.Y})
		} else {
			s.DistractorIndices = append(s.DistractorIndices, [2]int{center.X, center.Y})
		}
	}

	if p.CellsUsed != nil && m.engine.Grid() != nil {
		g, err := placement.GridAsChar(m.engine.Grid().Spec, p.CellsUsed, l.Classes)
		if err != nil {
			return nil, err
		}
		s.GridAsChar = g
	}
	return s, nil
}

// MakeStim plans and renders a single display.
func (m *Maker) MakeStim(setSize, numTarget int) (*Stimulus, error) {
	layouts, err := m.PlanGroup(setSize, numTarget, 1, false)
	if err != nil {
		return nil, err
	}
	return m.Render(layouts[0])
}
