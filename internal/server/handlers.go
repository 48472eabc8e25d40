package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/ironsheep/searchstims/internal/audit"
	"github.com/ironsheep/searchstims/internal/batch"
	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/detection"
	"github.com/ironsheep/searchstims/internal/imaging"
	"github.com/ironsheep/searchstims/internal/ledger"
	"github.com/ironsheep/searchstims/internal/placement"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "stims_plan", "stims_preview").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Planning
	case "stims_plan":
		return s.handlePlan(args)

	// Rendering
	case "stims_preview":
		return s.handlePreview(args)
	case "stims_make":
		return s.handleMake(ctx, args)

	// Inspection
	case "stims_audit":
		return s.handleAudit(ctx, args)
	case "stims_inspect":
		return s.handleInspect(args)
	case "stims_crop":
		return s.handleCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// === Planning ===

type geometryArgs struct {
	WindowSize   *config.Pair `json:"window_size"`
	GridSize     *config.Pair `json:"grid_size"`
	BorderSize   *config.Pair `json:"border_size"`
	ItemBBoxSize *config.Pair `json:"item_bbox_size"`
	Jitter       *int         `json:"jitter"`
	Seed         int64        `json:"seed"`
}

type planArgs struct {
	geometryArgs
	SetSize        int   `json:"set_size"`
	NumImages      int   `json:"num_images"`
	Unique         *bool `json:"unique"`
	MaxAssignments int   `json:"max_assignments"`
}

// PlannedDisplay is one planned grid display with its pixel centers.
type PlannedDisplay struct {
	placement.Assignment
	CenterX []int `json:"center_x"`
	CenterY []int `json:"center_y"`
}

// PlanResult is the result of stims_plan.
type PlanResult struct {
	Cells            int              `json:"cells"`
	CellCombinations int              `json:"cell_combinations"`
	JitterPairs      int              `json:"jitter_pairs"`
	Capacity         int              `json:"capacity"`
	Requested        int              `json:"requested"`
	Feasible         bool             `json:"feasible"`
	Reason           string           `json:"reason,omitempty"`
	Planned          int              `json:"planned"`
	Displays         []PlannedDisplay `json:"displays"`
}

func (s *Server) handlePlan(args json.RawMessage) (interface{}, error) {
	var a planArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxAssignments == 0 {
		a.MaxAssignments = 10
	}
	unique := a.Unique == nil || *a.Unique

	cfg := placement.Config{
		Window:   pairSize(a.WindowSize, config.DefaultWindowSize),
		ItemBBox: pairSize(a.ItemBBoxSize, config.DefaultItemBBoxSize),
		Jitter:   config.DefaultJitter,
	}
	if a.Jitter != nil {
		cfg.Jitter = *a.Jitter
	}
	if a.BorderSize != nil {
		b := pairSize(a.BorderSize, config.Pair{})
		cfg.Border = &b
	}
	gs := config.DefaultGridSize
	if a.GridSize != nil {
		gs = *a.GridSize
	}
	cfg.Grid = &placement.GridSpec{Rows: gs[0], Cols: gs[1]}

	engine, err := placement.NewEngine(cfg, newRand(a.Seed))
	if err != nil {
		return nil, err
	}

	n := engine.Grid().NumCells()
	res := &PlanResult{
		Cells:            n,
		CellCombinations: placement.CountCombinations(n, a.SetSize),
		JitterPairs:      (cfg.Jitter + 1) * (cfg.Jitter + 1),
		Capacity:         placement.Capacity(n, a.SetSize, cfg.Jitter),
		Requested:        a.NumImages,
		Displays:         []PlannedDisplay{},
	}

	plan, err := engine.Plan(a.SetSize, a.NumImages, unique)
	var inf *placement.InfeasibleError
	switch {
	case errors.As(err, &inf):
		res.Reason = inf.Error()
		return res, nil
	case err != nil:
		return nil, err
	}

	res.Feasible = true
	res.Planned = len(plan)
	for i, asg := range plan {
		if i >= a.MaxAssignments {
			break
		}
		p := engine.Place(asg)
		res.Displays = append(res.Displays, PlannedDisplay{Assignment: asg, CenterX: p.CenterX, CenterY: p.CenterY})
	}
	return res, nil
}

func pairSize(p *config.Pair, def config.Pair) placement.Size {
	if p == nil {
		p = &def
	}
	return placement.Size{H: p[0], W: p[1]}
}

// === Rendering ===

// gridLineColor is the semi-transparent red used for cell overlays.
const gridLineColor = "#FF000080"

type previewArgs struct {
	geometryArgs
	Flavor             string `json:"flavor"`
	SetSize            int    `json:"set_size"`
	NumTarget          *int   `json:"num_target"`
	FreeField          bool   `json:"free_field"`
	MinCenterDist      *int   `json:"min_center_dist"`
	TargetColor        string `json:"target_color"`
	DistractorColor    string `json:"distractor_color"`
	AltDistractorColor string `json:"alt_distractor_color"`
	BackgroundColor    string `json:"background_color"`
	TargetNumber       *int   `json:"target_number"`
	DistractorNumber   *int   `json:"distractor_number"`
	TargetRotation     *int   `json:"target_rotation"`
	ShowGrid           bool   `json:"show_grid"`
	SavePath           string `json:"save_path"`
}

// PreviewResult is the result of stims_preview.
type PreviewResult struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	ImageBase64 string      `json:"image_base64"`
	MimeType    string      `json:"mime_type"`
	Meta        ledger.Meta `json:"meta"`
	SavedTo     string      `json:"saved_to,omitempty"`
}

// previewConfig turns tool arguments into a one-stimulus config so that the
// preview gets exactly the defaults and validation of a batch.
func previewConfig(a previewArgs) *config.Config {
	geo := config.Geometry{
		WindowSize:    a.WindowSize,
		GridSize:      a.GridSize,
		BorderSize:    a.BorderSize,
		ItemBBoxSize:  a.ItemBBoxSize,
		Jitter:        a.Jitter,
		MinCenterDist: a.MinCenterDist,
	}
	if a.FreeField {
		ff := true
		geo.FreeField = &ff
	}
	cfg := &config.Config{
		General: config.General{
			SetSizes:         []int{a.SetSize},
			NumTargetPresent: config.Counts{Total: 1},
			NumTargetAbsent:  config.Counts{Total: 1},
		},
		Stimuli: []config.Stimulus{{
			Name:               "preview",
			Flavor:             a.Flavor,
			Geometry:           geo,
			TargetColor:        a.TargetColor,
			DistractorColor:    a.DistractorColor,
			AltDistractorColor: a.AltDistractorColor,
			BackgroundColor:    a.BackgroundColor,
			TargetNumber:       a.TargetNumber,
			DistractorNumber:   a.DistractorNumber,
			TargetRotation:     a.TargetRotation,
		}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	numTarget := 1
	if a.NumTarget != nil {
		numTarget = *a.NumTarget
	}

	cfg := previewConfig(a)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec, err := cfg.Resolve(0)
	if err != nil {
		return nil, err
	}
	maker, err := batch.NewMaker(spec, s.palette, newRand(a.Seed))
	if err != nil {
		return nil, err
	}
	stim, err := maker.MakeStim(a.SetSize, numTarget)
	if err != nil {
		return nil, err
	}

	imgFile := ""
	if a.SavePath != "" {
		imgFile = filepath.Base(a.SavePath)
	}
	res := &PreviewResult{
		Width:    stim.Surface.Bounds().Dx(),
		Height:   stim.Surface.Bounds().Dy(),
		MimeType: "image/png",
		Meta:     ledger.NewMeta(imgFile, stim),
	}

	if a.SavePath != "" {
		if err := imaging.SavePNG(a.SavePath, stim.Surface); err != nil {
			return nil, err
		}
		if err := ledger.WriteMeta(batch.MetaPath(a.SavePath), res.Meta); err != nil {
			return nil, err
		}
		s.cache.Evict(a.SavePath)
		res.SavedTo = a.SavePath
	}

	if g := maker.Engine().Grid(); a.ShowGrid && g != nil {
		overlay, err := imaging.CellOverlay(stim.Surface, imaging.CellGrid{
			Rows:    g.Spec.Rows,
			Cols:    g.Spec.Cols,
			CellW:   g.CellW,
			CellH:   g.CellH,
			OriginX: g.OffsetX,
			OriginY: g.OffsetY,
		}, true, gridLineColor)
		if err != nil {
			return nil, err
		}
		res.ImageBase64 = overlay.ImageBase64
		return res, nil
	}
	res.ImageBase64, err = imaging.EncodeBase64PNG(stim.Surface)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type makeArgs struct {
	ConfigPath string `json:"config_path"`
	OutputDir  string `json:"output_dir"`
}

func (s *Server) loadConfig(path, outputDir string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.General.OutputDir = outputDir
	}
	return cfg, nil
}

func (s *Server) handleMake(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a makeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.loadConfig(a.ConfigPath, a.OutputDir)
	if err != nil {
		return nil, err
	}
	o, err := batch.New(cfg, s.logger)
	if err != nil {
		return nil, err
	}
	// A batch may rewrite files this server has already cached.
	defer s.cache.Clear()
	return o.Run(ctx)
}

// === Inspection ===

type auditArgs struct {
	ConfigPath string `json:"config_path"`
	CSVPath    string `json:"csv_path"`
	DumpDir    string `json:"dump_dir"`
}

func (s *Server) handleAudit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a auditArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := s.loadConfig(a.ConfigPath, "")
	if err != nil {
		return nil, err
	}
	if a.CSVPath == "" {
		a.CSVPath = filepath.Join(cfg.General.OutputDir, cfg.General.CSVFilename)
	}
	opts := audit.DefaultOptions()
	opts.DumpDir = a.DumpDir

	auditor, err := audit.New(cfg, opts, s.logger)
	if err != nil {
		return nil, err
	}
	return auditor.Run(ctx, a.CSVPath)
}

type inspectArgs struct {
	Path            string                 `json:"path"`
	BackgroundColor string                 `json:"background_color"`
	Points          []imaging.LabeledPoint `json:"points"`
	Colors          int                    `json:"colors"`
}

// InspectResult is the result of stims_inspect.
type InspectResult struct {
	*imaging.DimensionsResult
	Items          []detection.Blob             `json:"items"`
	DominantColors []imaging.ColorFrequency     `json:"dominant_colors"`
	Samples        []imaging.LabeledColorResult `json:"samples,omitempty"`
}

func (s *Server) handleInspect(args json.RawMessage) (interface{}, error) {
	var a inspectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.BackgroundColor == "" {
		a.BackgroundColor = config.DefaultBackground
	}
	if a.Colors == 0 {
		a.Colors = 3
	}
	bg, err := s.palette.Color(a.BackgroundColor)
	if err != nil {
		return nil, err
	}

	dims, err := imaging.GetDimensions(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	opts := audit.DefaultOptions()
	blobs, err := detection.FindBlobs(img, detection.Options{
		Background: bg,
		Tolerance:  opts.BackgroundTolerance,
		MinArea:    opts.MinBlobArea,
	})
	if err != nil {
		return nil, err
	}

	res := &InspectResult{
		DimensionsResult: dims,
		Items:            blobs.Blobs,
		DominantColors:   imaging.DominantColors(img, a.Colors, image.Rectangle{}, bg),
	}
	if len(a.Points) > 0 {
		res.Samples, err = imaging.SampleColors(img, a.Points)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

type cropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, image.Rect(a.X1, a.Y1, a.X2, a.Y2), a.Scale)
}
