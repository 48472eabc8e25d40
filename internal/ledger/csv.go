package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// Header is the first row of every ledger CSV.
var Header = []string{
	"stimulus", "set_size", "target_condition", "img_num",
	"root_output_dir", "img_file", "meta_file",
}

// CSVWriter appends records to a ledger file. It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// CreateCSV creates (or truncates) path and writes the header.
func CreateCSV(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}
	cw := &CSVWriter{file: f, w: csv.NewWriter(f)}
	if err := cw.w.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write ledger header: %w", err)
	}
	return cw, nil
}

// Write appends records in order.
func (c *CSVWriter) Write(recs ...Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range recs {
		if err := c.w.Write(r.row()); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	c.w.Flush()
	return c.w.Error()
}

// Close flushes and closes the file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return fmt.Errorf("failed to flush ledger: %w", err)
	}
	return c.file.Close()
}

func (r Record) row() []string {
	return []string{
		r.Stimulus,
		strconv.Itoa(r.SetSize),
		r.TargetCondition,
		strconv.Itoa(r.ImgNum),
		r.RootOutputDir,
		r.ImgFile,
		r.MetaFile,
	}
}

// ReadCSV reads every record of a ledger file.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()
	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}
	for i, name := range Header {
		if head[i] != name {
			return nil, fmt.Errorf("unexpected ledger column %d: got %q, want %q", i, head[i], name)
		}
	}

	var recs []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger row: %w", err)
		}
		setSize, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid set_size %q: %w", row[1], err)
		}
		imgNum, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("invalid img_num %q: %w", row[3], err)
		}
		recs = append(recs, Record{
			Stimulus:        row[0],
			SetSize:         setSize,
			TargetCondition: row[2],
			ImgNum:          imgNum,
			RootOutputDir:   row[4],
			ImgFile:         row[5],
			MetaFile:        row[6],
		})
	}
	return recs, nil
}
