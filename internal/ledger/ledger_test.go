package ledger

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/searchstims/internal/placement"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

func sampleRecords(root string) []Record {
	return []Record{
		{"RVvGV", 2, ConditionPresent, 0, root, "RVvGV/2/present/RVvGV_set_size_2_target_present_0.png", "RVvGV/2/present/RVvGV_set_size_2_target_present_0.meta.json"},
		{"RVvGV", 2, ConditionAbsent, 1, root, "RVvGV/2/absent/RVvGV_set_size_2_target_absent_1.png", "RVvGV/2/absent/RVvGV_set_size_2_target_absent_1.meta.json"},
	}
}

func TestCondition(t *testing.T) {
	tests := []struct {
		numTarget int
		want      string
	}{
		{0, ConditionAbsent},
		{1, ConditionPresent},
		{3, ConditionPresent},
	}
	for _, tt := range tests {
		if got := Condition(tt.numTarget); got != tt.want {
			t.Errorf("Condition(%d) = %q, want %q", tt.numTarget, got, tt.want)
		}
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stimuli.csv")
	w, err := CreateCSV(path)
	if err != nil {
		t.Fatalf("CreateCSV failed: %v", err)
	}
	want := sampleRecords("/data/out")
	if err := w.Write(want...); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	if firstLine != "stimulus,set_size,target_condition,img_num,root_output_dir,img_file,meta_file" {
		t.Errorf("header = %q", firstLine)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong header", "a,b,c,d,e,f,g\n"},
		{"bad set size", strings.Join(Header, ",") + "\nRVvGV,two,present,0,/r,a.png,a.meta.json\n"},
		{"short row", strings.Join(Header, ",") + "\nRVvGV,2,present\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readRecords(strings.NewReader(tt.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMeta_RoundTrip(t *testing.T) {
	s := &stimulus.Stimulus{
		Items: []stimulus.Item{
			{Index: 0, Role: placement.Target, Class: "t", Center: image.Pt(22, 22), BBox: image.Rect(7, 7, 37, 37)},
			{Index: 1, Role: placement.Distractor, Class: "d", Center: image.Pt(67, 22), BBox: image.Rect(52, 7, 82, 37)},
		},
		GridAsChar:        [][]string{{"t", "d"}, {"", ""}},
		TargetIndices:     [][2]int{{22, 22}},
		DistractorIndices: [][2]int{{67, 22}},
	}
	m := NewMeta("x.png", s)
	path := filepath.Join(t.TempDir(), "x.meta.json")
	if err := WriteMeta(path, m); err != nil {
		t.Fatalf("WriteMeta failed: %v", err)
	}
	got, err := ReadMeta(path)
	if err != nil {
		t.Fatalf("ReadMeta failed: %v", err)
	}
	if got.ImgFile != "x.png" {
		t.Errorf("ImgFile = %q, want x.png", got.ImgFile)
	}
	if len(got.Objects) != 2 || got.Objects[0].Name != "t" || got.Objects[1].Name != "d" {
		t.Errorf("Objects = %+v", got.Objects)
	}
	if got.Objects[0].XMin != 7 || got.Objects[0].YMax != 37 {
		t.Errorf("object 0 box = %+v, want xmin 7 ymax 37", got.Objects[0])
	}
	if got.TargetIndices[0] != [2]int{22, 22} {
		t.Errorf("TargetIndices = %v", got.TargetIndices)
	}
	if got.GridAsChar[0][0] != "t" || got.GridAsChar[1][1] != "" {
		t.Errorf("GridAsChar = %v", got.GridAsChar)
	}
}

func TestNewMeta_EmptyIndices(t *testing.T) {
	m := NewMeta("y.png", &stimulus.Stimulus{})
	if m.TargetIndices == nil || m.DistractorIndices == nil {
		t.Error("indices should encode as empty lists, not null")
	}
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), IndexFilename))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer idx.Close()

	recs := sampleRecords("/data/out")
	if err := idx.Insert(ctx, "run-a", recs); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := idx.Insert(ctx, "run-b", recs[:1]); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := idx.Records(ctx, "run-a")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	for i := range recs {
		if got[i] != recs[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], recs[i])
		}
	}

	runs, err := idx.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if runs["run-a"] != 2 || runs["run-b"] != 1 {
		t.Errorf("Runs = %v, want run-a:2 run-b:1", runs)
	}
}

func TestOpenIndex_EmptyPath(t *testing.T) {
	if _, err := OpenIndex(""); err == nil {
		t.Error("expected error for empty path")
	}
}
