package stimulus

import (
	"image"
	"math/rand"
	"testing"

	"github.com/ironsheep/searchstims/internal/placement"
)

func TestParseFlavor(t *testing.T) {
	tests := []struct {
		in      string
		want    Flavor
		wantErr bool
	}{
		{"rectangle", FlavorRectangle, false},
		{"Rectangle_Conjunction", FlavorRectangleConjunction, false},
		{" number ", FlavorNumber, false},
		{"tl", FlavorTL, false},
		{"xo", FlavorXO, false},
		{"circle", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFlavor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFlavor(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFlavor(%q): got %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"bad number", func(o *Options) { o.Flavor = FlavorNumber; o.TargetNumber = 3 }, true},
		{"same numbers", func(o *Options) { o.Flavor = FlavorNumber; o.TargetNumber = 5 }, true},
		{"swapped numbers", func(o *Options) { o.Flavor = FlavorNumber; o.TargetNumber = 5; o.DistractorNumber = 2 }, false},
		{"rotation zero", func(o *Options) { o.Flavor = FlavorTL; o.TargetRotation = 0 }, true},
		{"rotation 360", func(o *Options) { o.Flavor = FlavorTL; o.TargetRotation = 360 }, true},
		{"rotation 359", func(o *Options) { o.Flavor = FlavorTL; o.TargetRotation = 359 }, false},
		{"empty bbox", func(o *Options) { o.ItemBBox = placement.Size{} }, true},
		{"unknown flavor", func(o *Options) { o.Flavor = "star" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions(FlavorRectangle)
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRenderer_AllFlavors(t *testing.T) {
	pal := DefaultPalette()
	for _, f := range Flavors() {
		t.Run(string(f), func(t *testing.T) {
			if _, err := NewRenderer(DefaultOptions(f), pal); err != nil {
				t.Fatalf("NewRenderer failed: %v", err)
			}
		})
	}
}

func TestNewRenderer_UnknownColor(t *testing.T) {
	o := DefaultOptions(FlavorRectangle)
	o.TargetColor = "mauve"
	if _, err := NewRenderer(o, DefaultPalette()); err == nil {
		t.Error("unknown color should fail")
	}
}

func TestSymbols_Binary(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	roles, err := placement.AssignRoles(rng, 6, 2)
	if err != nil {
		t.Fatalf("AssignRoles failed: %v", err)
	}

	syms := symbols(rng, roles, nil)
	counts := map[string]int{}
	for _, s := range syms {
		counts[s]++
	}
	if counts["t"] != 2 || counts["d"] != 4 {
		t.Errorf("got %v, want 2 t and 4 d", counts)
	}
	for _, i := range roles.Targets {
		if syms[i] != "t" {
			t.Errorf("target %d has symbol %q", i, syms[i])
		}
	}
}

func TestSymbols_Split(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	split := &classSplit{ClassVertical, ClassHorizontal}

	tests := []struct {
		setSize   int
		numTarget int
	}{
		{8, 1},
		{8, 0},
		{1, 1},
		{3, 0},
	}

	for _, tt := range tests {
		roles, err := placement.AssignRoles(rng, tt.setSize, tt.numTarget)
		if err != nil {
			t.Fatalf("AssignRoles failed: %v", err)
		}
		syms := symbols(rng, roles, split)

		counts := map[string]int{}
		for _, s := range syms {
			counts[s]++
		}
		d := tt.setSize - tt.numTarget
		if counts["t"] != tt.numTarget {
			t.Errorf("set size %d: got %d targets, want %d", tt.setSize, counts["t"], tt.numTarget)
		}
		if counts["V"]+counts["H"] != d {
			t.Errorf("set size %d: got %d distractors, want %d", tt.setSize, counts["V"]+counts["H"], d)
		}
		if diff := counts["V"] - counts["H"]; diff < -1 || diff > 1 {
			t.Errorf("set size %d: unbalanced split %v", tt.setSize, counts)
		}
	}
}

func TestSymbols_SplitRemainderIsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	split := &classSplit{ClassX, ClassO}
	roles, err := placement.AssignRoles(rng, 8, 1)
	if err != nil {
		t.Fatalf("AssignRoles failed: %v", err)
	}

	moreX := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		counts := map[string]int{}
		for _, s := range symbols(rng, roles, split) {
			counts[s]++
		}
		if counts["x"] > counts["o"] {
			moreX++
		}
	}
	frac := float64(moreX) / trials
	if frac < 0.4 || frac > 0.6 {
		t.Errorf("extra distractor went to x in %.3f of trials, want about 0.5", frac)
	}
}

func TestBarRect(t *testing.T) {
	bbox := image.Rect(10, 20, 40, 50)

	if got, want := BarRect(bbox, false), image.Rect(20, 20, 30, 50); got != want {
		t.Errorf("vertical: got %v, want %v", got, want)
	}
	if got, want := BarRect(bbox, true), image.Rect(10, 30, 40, 40); got != want {
		t.Errorf("horizontal: got %v, want %v", got, want)
	}
}

func TestItemBBox(t *testing.T) {
	got := ItemBBox(image.Pt(22, 22), placement.Size{H: 30, W: 30})
	if want := image.Rect(7, 7, 37, 37); got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	odd := ItemBBox(image.Pt(10, 10), placement.Size{H: 5, W: 7})
	if odd.Dx() != 7 || odd.Dy() != 5 || odd.Min != image.Pt(7, 8) {
		t.Errorf("odd size: got %v", odd)
	}
}

func TestGlyphMask(t *testing.T) {
	size := placement.Size{H: 30, W: 30}

	for _, text := range []string{"2", "5", "T", "L", "x", "o"} {
		t.Run(text, func(t *testing.T) {
			m, err := GlyphMask(text, size, 0)
			if err != nil {
				t.Fatalf("GlyphMask failed: %v", err)
			}
			if m.Bounds().Dx() != 30 || m.Bounds().Dy() != 30 {
				t.Fatalf("got %v, want 30x30", m.Bounds())
			}
			ink, blank := 0, 0
			for y := 0; y < 30; y++ {
				for x := 0; x < 30; x++ {
					if m.NRGBAAt(x, y).A > 128 {
						ink++
					} else {
						blank++
					}
				}
			}
			if ink == 0 || blank == 0 {
				t.Errorf("glyph %q: %d ink and %d blank pixels", text, ink, blank)
			}
		})
	}
}

func TestGlyphMask_Rotation(t *testing.T) {
	size := placement.Size{H: 30, W: 20}

	r90, err := GlyphMask("T", size, 90)
	if err != nil {
		t.Fatalf("GlyphMask failed: %v", err)
	}
	if r90.Bounds().Dx() != 30 || r90.Bounds().Dy() != 20 {
		t.Errorf("90 degrees: got %v, want 30x20", r90.Bounds())
	}

	r45, err := GlyphMask("T", size, 45)
	if err != nil {
		t.Fatalf("GlyphMask failed: %v", err)
	}
	if r45.Bounds().Dx() <= 20 || r45.Bounds().Dy() <= 30 {
		t.Errorf("45 degrees should enlarge the mask, got %v", r45.Bounds())
	}
}
