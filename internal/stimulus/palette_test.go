package stimulus

import (
	"image/color"
	"testing"
)

func TestPalette_Color(t *testing.T) {
	p := DefaultPalette()

	tests := []struct {
		name string
		want color.RGBA
	}{
		{"red", color.RGBA{255, 0, 0, 255}},
		{"GREEN", color.RGBA{0, 255, 0, 255}},
		{"blue", color.RGBA{0, 0, 255, 255}},
		{"red255green51", color.RGBA{255, 51, 0, 255}},
		{"green255red204", color.RGBA{204, 255, 0, 255}},
		{"#336699", color.RGBA{0x33, 0x66, 0x99, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Color(tt.name)
			if err != nil {
				t.Fatalf("Color(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPalette_Unknown(t *testing.T) {
	p := DefaultPalette()

	for _, name := range []string{"chartreuse", "#12", ""} {
		if _, err := p.Color(name); err == nil {
			t.Errorf("Color(%q) should fail", name)
		}
		if p.Has(name) {
			t.Errorf("Has(%q) should be false", name)
		}
	}
}

func TestNewPalette_Extra(t *testing.T) {
	p, err := NewPalette(map[string]string{"gray": "#808080", "red": "#EE0000"})
	if err != nil {
		t.Fatalf("NewPalette failed: %v", err)
	}

	gray, err := p.Color("gray")
	if err != nil {
		t.Fatalf("Color(gray) failed: %v", err)
	}
	if gray != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("gray: got %v", gray)
	}
	red, _ := p.Color("red")
	if red.R != 0xEE {
		t.Errorf("override of red not applied: got %v", red)
	}

	if _, err := NewPalette(map[string]string{"bad": "not-a-color"}); err == nil {
		t.Error("invalid hex should fail")
	}
}

func TestPalette_Names(t *testing.T) {
	names := DefaultPalette().Names()
	if len(names) != len(defaultColors) {
		t.Fatalf("got %d names, want %d", len(names), len(defaultColors))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
