package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/searchstims/internal/stimulus"
)

// Target conditions.
const (
	ConditionPresent = "present"
	ConditionAbsent  = "absent"
)

// Condition returns the condition name for a display with numTarget targets.
func Condition(numTarget int) string {
	if numTarget > 0 {
		return ConditionPresent
	}
	return ConditionAbsent
}

// Record is one row of the ledger. ImgFile and MetaFile are relative to RootOutputDir.
type Record struct {
	Stimulus        string `json:"stimulus"`
	SetSize         int    `json:"set_size"`
	TargetCondition string `json:"target_condition"`
	ImgNum          int    `json:"img_num"`
	RootOutputDir   string `json:"root_output_dir"`
	ImgFile         string `json:"img_file"`
	MetaFile        string `json:"meta_file"`
}

// Meta is the content of an image's .meta.json file.
type Meta struct {
	ImgFile           string            `json:"img_file"`
	TargetIndices     [][2]int          `json:"target_indices"`
	DistractorIndices [][2]int          `json:"distractor_indices"`
	GridAsChar        [][]string        `json:"grid_as_char"`
	Objects           []stimulus.Object `json:"objects"`
}

// NewMeta collects the metadata of a rendered stimulus.
func NewMeta(imgFile string, s *stimulus.Stimulus) Meta {
	m := Meta{
		ImgFile:           imgFile,
		TargetIndices:     s.TargetIndices,
		DistractorIndices: s.DistractorIndices,
		GridAsChar:        s.GridAsChar,
		Objects:           s.Objects(),
	}
	if m.TargetIndices == nil {
		m.TargetIndices = [][2]int{}
	}
	if m.DistractorIndices == nil {
		m.DistractorIndices = [][2]int{}
	}
	return m
}

// WriteMeta writes m as indented JSON to path.
func WriteMeta(path string, m Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// ReadMeta reads a .meta.json file.
func ReadMeta(path string) (Meta, error) {
	var m Meta
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse metadata %s: %w", path, err)
	}
	return m, nil
}
