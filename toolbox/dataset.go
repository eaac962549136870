package toolbox

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Record is one labelled sample.
type Record struct {
	Label    int
	Features Sample
}

// Dataset is an ordered, fully loaded set of labelled samples.
type Dataset struct {
	Records []Record
}

func (ds *Dataset) Len() int {
	return len(ds.Records)
}

// Labels returns the true label of every record, in order.
func (ds *Dataset) Labels() []int {
	labels := make([]int, len(ds.Records))
	for k, rec := range ds.Records {
		labels[k] = rec.Label
	}
	return labels
}

// Validate checks every label is a valid class for a network with the given
// number of classes, and every feature is finite.
func (ds *Dataset) Validate(classes int) error {
	for k, rec := range ds.Records {
		if rec.Label < 0 || rec.Label >= classes {
			return fmt.Errorf("%w: record %d has label %d, have %d classes", ErrClassRange, k, rec.Label, classes)
		}
		if err := rec.Features.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", k, err)
		}
	}
	return nil
}

// LoadDataset reads a dataset from disk.  Files ending in .npz are read with
// ReadNPZDataset; anything else is parsed as text by ParseDataset.
func LoadDataset(path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".npz") {
		return ReadNPZDataset(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening dataset file: %w", err)
	}
	defer f.Close()

	ds, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("while parsing %s: %w", path, err)
	}
	return ds, nil
}

// ParseDataset reads one record per line: an integer label followed by
// InputSize whitespace-separated features.  Blank lines are skipped.  Any
// malformed line fails the whole load.
func ParseDataset(r io.Reader) (*Dataset, error) {
	ds := &Dataset{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 1+InputSize {
			return nil, fmt.Errorf("line %d: %w: got %d fields, want %d", lineNo, ErrShape, len(fields), 1+InputSize)
		}

		var rec Record
		label, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: label: %w", lineNo, err)
		}
		if label < 0 {
			return nil, fmt.Errorf("line %d: %w: negative label %d", lineNo, ErrClassRange, label)
		}
		rec.Label = label

		for j := 0; j < InputSize; j++ {
			v, err := strconv.ParseFloat(fields[1+j], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: feature %d: %w", lineNo, j, err)
			}
			// ParseFloat accepts "nan" and "inf".
			if !isFinite(v) {
				return nil, fmt.Errorf("line %d: feature %d: %w: %s", lineNo, j, ErrNonFinite, fields[1+j])
			}
			rec.Features[j] = v
		}

		ds.Records = append(ds.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("while reading records: %w", err)
	}

	return ds, nil
}
