package toolbox

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

func TestNPZWeightsRestoreNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orientnet.npz")
	want := DefaultNetwork()

	if err := WriteNPZWeights(path, want); err != nil {
		t.Fatalf("WriteNPZWeights error: %v", err)
	}
	got, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights error: %v", err)
	}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Restored network differs; diff (-got +want)\n%s", diff)
	}
}

func TestReadNPZDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.npz")

	w, err := npz.Create(path)
	if err != nil {
		t.Fatalf("npz.Create error: %v", err)
	}
	x := mat.NewDense(3, InputSize, []float64{
		0.5, -1, 2,
		1, 1, 1,
		-3, 0, 0.25,
	})
	if err := w.Write("x.npy", x); err != nil {
		t.Fatalf("Write(x) error: %v", err)
	}
	if err := w.Write("y.npy", []int64{2, 0, 5}); err != nil {
		t.Fatalf("Write(y) error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	ds, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset error: %v", err)
	}

	want := []Record{
		{Label: 2, Features: Sample{0.5, -1, 2}},
		{Label: 0, Features: Sample{1, 1, 1}},
		{Label: 5, Features: Sample{-3, 0, 0.25}},
	}
	if diff := cmp.Diff(ds.Records, want); diff != "" {
		t.Errorf("Wrong records; diff (-got +want)\n%s", diff)
	}
}

func TestReadNPZDatasetShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.npz")

	w, err := npz.Create(path)
	if err != nil {
		t.Fatalf("npz.Create error: %v", err)
	}
	if err := w.Write("x", mat.NewDense(2, InputSize, make([]float64, 2*InputSize))); err != nil {
		t.Fatalf("Write(x) error: %v", err)
	}
	if err := w.Write("y", []int64{1, 2, 3}); err != nil {
		t.Fatalf("Write(y) error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if _, err := ReadNPZDataset(path); err == nil {
		t.Errorf("ReadNPZDataset accepted 2 samples with 3 labels")
	}
}

func TestReadNPZDatasetRejectsNonFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.npz")

	w, err := npz.Create(path)
	if err != nil {
		t.Fatalf("npz.Create error: %v", err)
	}
	if err := w.Write("x", mat.NewDense(2, InputSize, []float64{0, 0, 0, 1, math.NaN(), 1})); err != nil {
		t.Fatalf("Write(x) error: %v", err)
	}
	if err := w.Write("y", []int64{1, 2}); err != nil {
		t.Fatalf("Write(y) error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if _, err := ReadNPZDataset(path); !errors.Is(err, ErrNonFinite) {
		t.Errorf("ReadNPZDataset error = %v, want ErrNonFinite", err)
	}
}

// npyBytes encodes a little-endian float64 array in .npy version 1.0 format.
func npyBytes(t *testing.T, fortran bool, shape []int, v []float64) []byte {
	t.Helper()
	order := "False"
	if fortran {
		order = "True"
	}
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	shp := strings.Join(dims, ", ")
	if len(dims) == 1 {
		shp += ","
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': %s, 'shape': (%s), }", order, shp)
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	b := []byte("\x93NUMPY\x01\x00")
	b = binary.LittleEndian.AppendUint16(b, uint16(len(header)))
	b = append(b, header...)
	for _, f := range v {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	}
	return b
}

func TestReadNPZDatasetRejectsFortranOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.npz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	zw := zip.NewWriter(f)
	entries := []struct {
		name string
		data []byte
	}{
		// Column-major (2, 3): rows {1, 2, 3} and {4, 5, 6}.
		{"x.npy", npyBytes(t, true, []int{2, InputSize}, []float64{1, 4, 2, 5, 3, 6})},
		{"y.npy", npyBytes(t, false, []int{2}, []float64{0, 1})},
	}
	for _, e := range entries {
		ew, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip Create(%s) error: %v", e.name, err)
		}
		if _, err := ew.Write(e.data); err != nil {
			t.Fatalf("zip Write(%s) error: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if _, err := ReadNPZDataset(path); !errors.Is(err, ErrShape) {
		t.Errorf("ReadNPZDataset error = %v, want ErrShape", err)
	}
}
