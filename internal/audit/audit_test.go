package audit

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/searchstims/internal/batch"
	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/imaging"
	"github.com/ironsheep/searchstims/internal/ledger"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

const barBatch = `
general:
  num_target_present: [2, 2]
  num_target_absent: [2, 2]
  set_sizes: [2, 4]
  window_size: [90, 90]
  grid_size: [3, 3]
  item_bbox_size: [20, 20]
  jitter: 2
stimuli:
  - name: RVvGV
    flavor: rectangle
  - name: RVvRHGV
    flavor: rectangle_conjunction
`

// generate writes a small dataset and returns its config and ledger path.
func generate(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	t.Setenv(config.EnvOutputDir, root)
	t.Setenv(config.EnvSeed, "3")
	t.Setenv(config.EnvWorkers, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFile, "")

	cfg, err := config.Parse([]byte(barBatch))
	if err != nil {
		t.Fatalf("config.Parse failed: %v", err)
	}
	o, err := batch.New(cfg, nil)
	if err != nil {
		t.Fatalf("batch.New failed: %v", err)
	}
	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return cfg, sum.CSVPath
}

func TestRun_CleanDataset(t *testing.T) {
	cfg, csvPath := generate(t)
	a, err := New(cfg, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rep, err := a.Run(context.Background(), csvPath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Images != 16 {
		t.Errorf("Images = %d, want 16", rep.Images)
	}
	// 2 stimuli x 2 conditions x 2 images x (2 + 4) items
	if rep.Items != 48 {
		t.Errorf("Items = %d, want 48", rep.Items)
	}
	if !rep.OK() {
		for _, m := range rep.Mismatches {
			t.Errorf("unexpected mismatch: %s", m)
		}
	}
	if rep.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0 for bar stimuli", rep.Skipped)
	}
}

func TestRun_DetectsRecoloredTarget(t *testing.T) {
	cfg, csvPath := generate(t)

	recs, err := ledger.ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	var rec ledger.Record
	for _, r := range recs {
		if r.Stimulus == "RVvGV" && r.TargetCondition == ledger.ConditionPresent {
			rec = r
			break
		}
	}
	meta, err := ledger.ReadMeta(filepath.Join(rec.RootOutputDir, rec.MetaFile))
	if err != nil {
		t.Fatalf("ReadMeta failed: %v", err)
	}
	target := -1
	for i, o := range meta.Objects {
		if o.Name == "t" {
			target = i
		}
	}
	if target < 0 {
		t.Fatal("present image has no target")
	}

	// Paint the target bar in the distractor color.
	imgPath := filepath.Join(rec.RootOutputDir, rec.ImgFile)
	cache := imaging.NewImageCache()
	src, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, image.Point{}, draw.Src)
	o := meta.Objects[target]
	bar := stimulus.BarRect(image.Rect(o.XMin, o.YMin, o.XMax, o.YMax), false)
	draw.Draw(img, bar, &image.Uniform{C: color.RGBA{0, 255, 0, 255}}, image.Point{}, draw.Src)
	if err := imaging.SavePNG(imgPath, img); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	opts := DefaultOptions()
	opts.DumpDir = filepath.Join(t.TempDir(), "dump")
	a, err := New(cfg, opts, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rep, err := a.Run(context.Background(), csvPath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Mismatches) != 1 {
		t.Fatalf("got %d mismatches, want 1: %v", len(rep.Mismatches), rep.Mismatches)
	}
	m := rep.Mismatches[0]
	if m.ImgFile != rec.ImgFile || m.Item != target || m.Check != CheckColor {
		t.Errorf("mismatch = %+v, want color on item %d of %s", m, target, rec.ImgFile)
	}

	dumps, _ := filepath.Glob(filepath.Join(opts.DumpDir, "*.png"))
	if len(dumps) != 1 {
		t.Errorf("got %d dumped crops, want 1", len(dumps))
	}
}

func TestRun_DetectsMissingItem(t *testing.T) {
	cfg, csvPath := generate(t)
	recs, _ := ledger.ReadCSV(csvPath)
	rec := recs[len(recs)-1]

	imgPath := filepath.Join(rec.RootOutputDir, rec.ImgFile)
	blank := image.NewRGBA(image.Rect(0, 0, 90, 90))
	draw.Draw(blank, blank.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	if err := imaging.SavePNG(imgPath, blank); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	a, err := New(cfg, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rep, err := a.Run(context.Background(), csvPath)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	var count int
	for _, m := range rep.Mismatches {
		if m.ImgFile != rec.ImgFile {
			t.Errorf("mismatch in untouched image: %s", m)
		}
		if m.Check == CheckCount {
			count++
			if m.Got != "0" {
				t.Errorf("count mismatch got %s, want 0", m.Got)
			}
		}
	}
	if count != 1 {
		t.Errorf("got %d count mismatches, want 1", count)
	}
}

func TestRun_UnknownStimulus(t *testing.T) {
	cfg, csvPath := generate(t)
	cfg.Stimuli = cfg.Stimuli[:1]

	a, err := New(cfg, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := a.Run(context.Background(), csvPath); err == nil {
		t.Error("expected error for a stimulus missing from the config")
	}
}

func TestRun_MissingLedger(t *testing.T) {
	cfg, _ := generate(t)
	a, _ := New(cfg, DefaultOptions(), nil)
	if _, err := a.Run(context.Background(), filepath.Join(os.TempDir(), "no-such-ledger.csv")); err == nil {
		t.Error("expected error for a missing ledger")
	}
}

func TestExpect(t *testing.T) {
	cfg, _ := generate(t)
	a, err := New(cfg, DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	conj := a.specs["RVvRHGV"]

	tests := []struct {
		name        string
		class       string
		wantColor   color.RGBA
		orientation string
		wantErr     bool
	}{
		{"target", "t", color.RGBA{255, 0, 0, 255}, "vertical", false},
		{"vertical distractor", "dV", color.RGBA{0, 255, 0, 255}, "vertical", false},
		{"horizontal distractor", "dH", color.RGBA{255, 0, 0, 255}, "horizontal", false},
		{"unknown", "dq", color.RGBA{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := a.expect(conj, tt.class)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exp.color != tt.wantColor {
				t.Errorf("color = %v, want %v", exp.color, tt.wantColor)
			}
			if exp.orientation != tt.orientation {
				t.Errorf("orientation = %q, want %q", exp.orientation, tt.orientation)
			}
		})
	}
}
