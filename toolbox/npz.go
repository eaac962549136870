package toolbox

import (
	"fmt"
	"math"
	"slices"

	"github.com/chewxy/math32"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// numpy appends .npy to every array name it stores in an archive; np.load
// hides the suffix, so accept both spellings.
func npzKey(r *npz.Reader, name string) (string, bool) {
	keys := r.Keys()
	for _, k := range []string{name + ".npy", name} {
		if slices.Contains(keys, k) {
			return k, true
		}
	}
	return "", false
}

// readNPZFloats reads a float32 or float64 array and its shape.
func readNPZFloats(r *npz.Reader, name string) ([]float64, []int, error) {
	key, ok := npzKey(r, name)
	if !ok {
		return nil, nil, fmt.Errorf("no entry for %s", name)
	}
	header := r.Header(key)
	// Decoding into a flat slice keeps the on-disk element order.
	if header.Descr.Fortran && len(header.Descr.Shape) > 1 {
		return nil, nil, fmt.Errorf("%w: %s is stored in Fortran order", ErrShape, name)
	}

	switch header.Descr.Type {
	case "<f8":
		var raw []float64
		if err := r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("while reading float64 array %s: %w", name, err)
		}
		for i, v := range raw {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, fmt.Errorf("%s: %w: %v at index %d", name, ErrNonFinite, v, i)
			}
		}
		return raw, header.Descr.Shape, nil
	case "<f4":
		var raw []float32
		if err := r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("while reading float32 array %s: %w", name, err)
		}
		out := make([]float64, len(raw))
		for i, v := range raw {
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				return nil, nil, fmt.Errorf("%s: %w: %v at index %d", name, ErrNonFinite, v, i)
			}
			out[i] = float64(v)
		}
		return out, header.Descr.Shape, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dtype %s for %s", header.Descr.Type, name)
	}
}

// readNPZInts reads an integer array of any of the widths numpy commonly
// uses for labels.
func readNPZInts(r *npz.Reader, name string) ([]int, []int, error) {
	key, ok := npzKey(r, name)
	if !ok {
		return nil, nil, fmt.Errorf("no entry for %s", name)
	}
	header := r.Header(key)

	var out []int
	switch header.Descr.Type {
	case "<i8":
		var raw []int64
		if err := r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("while reading int64 array %s: %w", name, err)
		}
		out = make([]int, len(raw))
		for i, v := range raw {
			out[i] = int(v)
		}
	case "<i4":
		var raw []int32
		if err := r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("while reading int32 array %s: %w", name, err)
		}
		out = make([]int, len(raw))
		for i, v := range raw {
			out[i] = int(v)
		}
	case "|u1":
		var raw []uint8
		if err := r.Read(key, &raw); err != nil {
			return nil, nil, fmt.Errorf("while reading uint8 array %s: %w", name, err)
		}
		out = make([]int, len(raw))
		for i, v := range raw {
			out[i] = int(v)
		}
	default:
		return nil, nil, fmt.Errorf("unsupported dtype %s for %s", header.Descr.Type, name)
	}
	return out, header.Descr.Shape, nil
}

// ReadNPZWeights reads a network from a numpy archive holding the same keys
// as DumpTensors.
func ReadNPZWeights(path string) (*Network, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening weights file: %w", err)
	}
	defer r.Close()

	tensors := map[string]*Tensor{}
	for l := 0; l < 2; l++ {
		for _, k := range []string{weightKey(l), biasKey(l)} {
			v, shape, err := readNPZFloats(r, k)
			if err != nil {
				return nil, fmt.Errorf("while reading weights: %w", err)
			}
			tensors[k] = &Tensor{V: v, Shape: shape}
		}
	}

	net, err := LoadNetwork(tensors)
	if err != nil {
		return nil, fmt.Errorf("while restoring network: %w", err)
	}
	return net, nil
}

// WriteNPZWeights writes the network parameters to a numpy archive.  Weight
// matrices keep their (out, in) shape.
func WriteNPZWeights(path string, net *Network) error {
	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("while creating weights file: %w", err)
	}

	for l, lay := range []*Layer{net.Hidden, net.Output} {
		weights := mat.NewDense(lay.OutputSize, lay.InputSize, slices.Clone(lay.W))
		if err := w.Write(weightKey(l), weights); err != nil {
			w.Close()
			return fmt.Errorf("while writing %s: %w", weightKey(l), err)
		}
		if err := w.Write(biasKey(l), slices.Clone(lay.B)); err != nil {
			w.Close()
			return fmt.Errorf("while writing %s: %w", biasKey(l), err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing weights file: %w", err)
	}
	return nil
}

// ReadNPZDataset reads a dataset from a numpy archive with arrays x, shape
// (samples, InputSize), and y, shape (samples).
func ReadNPZDataset(path string) (*Dataset, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening dataset file: %w", err)
	}
	defer r.Close()

	x, xShape, err := readNPZFloats(r, "x")
	if err != nil {
		return nil, fmt.Errorf("while reading features: %w", err)
	}
	y, yShape, err := readNPZInts(r, "y")
	if err != nil {
		return nil, fmt.Errorf("while reading labels: %w", err)
	}

	if len(xShape) != 2 || xShape[1] != InputSize {
		return nil, fmt.Errorf("%w: x has shape %v, want (samples, %d)", ErrShape, xShape, InputSize)
	}
	if len(yShape) != 1 || yShape[0] != xShape[0] {
		return nil, fmt.Errorf("%w: y has shape %v, want (%d)", ErrShape, yShape, xShape[0])
	}

	ds := &Dataset{Records: make([]Record, xShape[0])}
	for k := range ds.Records {
		if y[k] < 0 {
			return nil, fmt.Errorf("%w: record %d has negative label %d", ErrClassRange, k, y[k])
		}
		ds.Records[k].Label = y[k]
		copy(ds.Records[k].Features[:], x[k*InputSize:(k+1)*InputSize])
	}
	return ds, nil
}
