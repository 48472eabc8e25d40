// Package audit re-reads a generated dataset and checks that every image
// shows what its metadata claims.
//
// Checks per image:
//   - count: one blob per item box and no blobs outside them.
//   - color: bar stimuli are sampled at the item center; glyph stimuli use
//     the dominant non-background color of the item box.
//   - orientation: bars must be vertical or horizontal as their class says.
//   - glyph: digits are read back with Tesseract. Builds without OCR report
//     these as skipped.
package audit

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/detection"
	"github.com/ironsheep/searchstims/internal/imaging"
	"github.com/ironsheep/searchstims/internal/ledger"
	"github.com/ironsheep/searchstims/internal/ocr"
	"github.com/ironsheep/searchstims/internal/placement"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

// Check names.
const (
	CheckCount       = "count"
	CheckColor       = "color"
	CheckOrientation = "orientation"
	CheckGlyph       = "glyph"
)

// Options tune the audit.
type Options struct {
	// ColorTolerance is the largest CIE L*a*b* distance accepted between the
	// expected and the observed item color.
	ColorTolerance float64

	// BackgroundTolerance is the per-channel tolerance used to separate items
	// from the background.
	BackgroundTolerance int

	// MinBlobArea drops specks smaller than this many pixels.
	MinBlobArea int

	// DumpDir, when set, receives an enlarged crop of every mismatched item.
	DumpDir string
}

// DefaultOptions returns tolerances that accept antialiased glyphs.
func DefaultOptions() Options {
	return Options{
		ColorTolerance:      0.15,
		BackgroundTolerance: 40,
		MinBlobArea:         4,
	}
}

// Mismatch is one failed check.
type Mismatch struct {
	ImgFile string `json:"img_file"`
	Item    int    `json:"item"` // -1 for image-level checks
	Check   string `json:"check"`
	Want    string `json:"want"`
	Got     string `json:"got"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s item %d %s: want %s, got %s", m.ImgFile, m.Item, m.Check, m.Want, m.Got)
}

// Report summarizes an audit.
type Report struct {
	Images     int        `json:"images"`
	Items      int        `json:"items"`
	Skipped    int        `json:"skipped"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether no check failed.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Auditor checks datasets produced from one config.
type Auditor struct {
	specs   map[string]config.StimulusSpec
	palette *stimulus.Palette
	named   map[string]color.Color
	opts    Options
	cache   *imaging.ImageCache
	reader  *ocr.Reader
	logger  *zap.Logger
}

// New returns an auditor for the stimuli of cfg.
func New(cfg *config.Config, opts Options, logger *zap.Logger) (*Auditor, error) {
	specs, err := cfg.ResolveAll()
	if err != nil {
		return nil, err
	}
	pal, err := stimulus.NewPalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to build palette: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]config.StimulusSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	named := make(map[string]color.Color)
	for _, name := range pal.Names() {
		c, _ := pal.Color(name)
		named[name] = c
	}
	return &Auditor{
		specs:   byName,
		palette: pal,
		named:   named,
		opts:    opts,
		cache:   imaging.NewImageCache(),
		reader:  ocr.NewReader("25"),
		logger:  logger,
	}, nil
}

// Run audits every image listed in the ledger at csvPath.
func (a *Auditor) Run(ctx context.Context, csvPath string) (*Report, error) {
	recs, err := ledger.ReadCSV(csvPath)
	if err != nil {
		return nil, err
	}
	if !ocr.Available() {
		a.logger.Warn("OCR unavailable, glyph identity checks will be skipped")
	}

	rep := &Report{Mismatches: []Mismatch{}}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := a.auditImage(rec, rep); err != nil {
			return rep, err
		}
	}

	a.logger.Info("audit finished",
		zap.Int("images", rep.Images),
		zap.Int("items", rep.Items),
		zap.Int("skipped", rep.Skipped),
		zap.Int("mismatches", len(rep.Mismatches)))
	return rep, nil
}

func (a *Auditor) auditImage(rec ledger.Record, rep *Report) error {
	spec, ok := a.specs[rec.Stimulus]
	if !ok {
		return fmt.Errorf("ledger names stimulus %q which is not in the config", rec.Stimulus)
	}
	imgPath := filepath.Join(rec.RootOutputDir, rec.ImgFile)
	img, err := a.cache.Load(imgPath)
	if err != nil {
		return err
	}
	// Every image is read once.
	defer a.cache.Evict(imgPath)

	meta, err := ledger.ReadMeta(filepath.Join(rec.RootOutputDir, rec.MetaFile))
	if err != nil {
		return err
	}
	bg, err := a.palette.Color(spec.Background)
	if err != nil {
		return err
	}

	rep.Images++
	rep.Items += len(meta.Objects)

	boxes := make([]image.Rectangle, len(meta.Objects))
	for i, o := range meta.Objects {
		boxes[i] = image.Rect(o.XMin, o.YMin, o.XMax, o.YMax)
	}

	found, err := detection.FindBlobs(img, detection.Options{
		Background: bg,
		Tolerance:  a.opts.BackgroundTolerance,
		MinArea:    a.opts.MinBlobArea,
	})
	if err != nil {
		return err
	}
	blobs := detection.MergeWithin(img, found.Blobs, boxes)
	if len(blobs) != len(boxes) {
		a.mismatch(rep, img, Mismatch{
			ImgFile: rec.ImgFile, Item: -1, Check: CheckCount,
			Want: strconv.Itoa(len(boxes)), Got: strconv.Itoa(len(blobs)),
		}, image.Rectangle{})
	}

	for i, o := range meta.Objects {
		a.auditItem(rec.ImgFile, img, spec, bg, i, o, boxes[i], blobs, rep)
	}
	return nil
}

func (a *Auditor) auditItem(imgFile string, img image.Image, spec config.StimulusSpec, bg color.Color,
	i int, o stimulus.Object, box image.Rectangle, blobs []detection.Blob, rep *Report) {
	exp, err := a.expect(spec, o.Name)
	if err != nil {
		a.mismatch(rep, img, Mismatch{ImgFile: imgFile, Item: i, Check: CheckColor, Want: "known class", Got: o.Name}, box)
		return
	}

	var got color.Color
	if spec.Render.Flavor.IsGlyph() {
		dom := imaging.DominantColors(img, 1, box, bg)
		if len(dom) > 0 {
			got = color.RGBA{R: dom[0].RGB.R, G: dom[0].RGB.G, B: dom[0].RGB.B, A: 255}
		}
	} else {
		c := image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
		if s, err := imaging.SampleColor(img, c.X, c.Y); err == nil {
			got = s.Color()
		}
	}
	if got == nil || imaging.ColorDistance(got, exp.color) > a.opts.ColorTolerance {
		a.mismatch(rep, img, Mismatch{
			ImgFile: imgFile, Item: i, Check: CheckColor,
			Want: a.describe(exp.color), Got: a.describe(got),
		}, box)
	}

	if exp.orientation != "" {
		gotOrientation := "missing"
		for _, b := range blobs {
			if image.Pt(b.Center.X, b.Center.Y).In(box) {
				gotOrientation = b.Orientation
				break
			}
		}
		if gotOrientation != exp.orientation {
			a.mismatch(rep, img, Mismatch{
				ImgFile: imgFile, Item: i, Check: CheckOrientation,
				Want: exp.orientation, Got: gotOrientation,
			}, box)
		}
	}

	if exp.digit != "" {
		res, err := a.reader.ReadGlyph(img, imaging.Pad(box, 2, img.Bounds()))
		switch {
		case err != nil:
			rep.Skipped++
		case res.Text != exp.digit:
			a.mismatch(rep, img, Mismatch{
				ImgFile: imgFile, Item: i, Check: CheckGlyph,
				Want: exp.digit, Got: res.Text,
			}, box)
		}
	}
}

// expectation is what an item of a given class must look like.
type expectation struct {
	color       color.Color
	orientation string
	digit       string
}

func (a *Auditor) expect(spec config.StimulusSpec, name string) (expectation, error) {
	r := spec.Render
	var colorName string
	var exp expectation

	target := name == placement.SymbolTarget
	switch r.Flavor {
	case stimulus.FlavorRectangle:
		colorName = pick(target, r.TargetColor, r.DistractorColor)
		exp.orientation = detection.OrientationVertical
	case stimulus.FlavorRectangleConjunction:
		exp.orientation = detection.OrientationVertical
		switch name {
		case placement.SymbolTarget:
			colorName = r.TargetColor
		case placement.SymbolDistractor + stimulus.ClassVertical:
			colorName = r.DistractorColor
		case placement.SymbolDistractor + stimulus.ClassHorizontal:
			colorName = r.TargetColor
			exp.orientation = detection.OrientationHorizontal
		default:
			return exp, fmt.Errorf("unknown class %q", name)
		}
	case stimulus.FlavorNumber:
		colorName = pick(target, r.TargetColor, r.DistractorColor)
		exp.digit = strconv.Itoa(pickInt(target, r.TargetNumber, r.DistractorNumber))
	case stimulus.FlavorTL:
		colorName = pick(target, r.TargetColor, r.DistractorColor)
	case stimulus.FlavorXO:
		switch name {
		case placement.SymbolTarget:
			colorName = r.TargetColor
		case placement.SymbolDistractor + stimulus.ClassX:
			colorName = r.DistractorColor
		case placement.SymbolDistractor + stimulus.ClassO:
			colorName = r.AltDistractorColor
		default:
			return exp, fmt.Errorf("unknown class %q", name)
		}
	}

	c, err := a.palette.Color(colorName)
	if err != nil {
		return exp, err
	}
	exp.color = c
	return exp, nil
}

func (a *Auditor) mismatch(rep *Report, img image.Image, m Mismatch, box image.Rectangle) {
	rep.Mismatches = append(rep.Mismatches, m)
	a.logger.Warn("audit mismatch",
		zap.String("img_file", m.ImgFile),
		zap.Int("item", m.Item),
		zap.String("check", m.Check),
		zap.String("want", m.Want),
		zap.String("got", m.Got))

	if a.opts.DumpDir == "" || box.Empty() {
		return
	}
	crop, err := imaging.CropRegion(img, imaging.Pad(box, 4, img.Bounds()), 4)
	if err != nil {
		return
	}
	name := fmt.Sprintf("%s_item%d_%s.png", filepath.Base(m.ImgFile), m.Item, m.Check)
	if err := os.MkdirAll(a.opts.DumpDir, 0o755); err == nil {
		if err := imaging.SavePNG(filepath.Join(a.opts.DumpDir, name), crop); err != nil {
			a.logger.Warn("failed to dump mismatch", zap.Error(err))
		}
	}
}

func pick(target bool, t, d string) string {
	if target {
		return t
	}
	return d
}

func pickInt(target bool, t, d int) int {
	if target {
		return t
	}
	return d
}

// describe renders c as hex followed by the nearest palette name.
func (a *Auditor) describe(c color.Color) string {
	if c == nil {
		return hex(c)
	}
	name, _ := imaging.NearestColor(c, a.named)
	return fmt.Sprintf("%s (%s)", hex(c), name)
}

func hex(c color.Color) string {
	if c == nil {
		return "none"
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
