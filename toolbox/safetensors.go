package toolbox

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chewxy/math32"
)

// Tensor is a named, shaped block of weights as stored on disk.
type Tensor struct {
	V     []float64
	Shape []int
}

type SafeTensorInfo struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets []int  `json:"data_offsets"`
}

// WriteSafeTensors writes the tensors in safetensors format with keys in sorted
// order.  Values are stored as F64 so a network round-trips bit for bit;
// ReadSafeTensors still accepts F32 files.
func WriteSafeTensors(w io.Writer, tensors map[string]*Tensor) error {
	header := map[string]SafeTensorInfo{}
	dataOffset := 0

	keys := []string{}
	for k := range tensors {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		begin := dataOffset
		dataOffset += len(tensors[k].V) * 8
		end := dataOffset

		header[k] = SafeTensorInfo{
			DType:       "F64",
			Shape:       tensors[k].Shape,
			DataOffsets: []int{begin, end},
		}
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerBytes))); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	for _, k := range keys {
		if err := binary.Write(w, binary.LittleEndian, tensors[k].V); err != nil {
			return fmt.Errorf("while writing %s values: %w", k, err)
		}
	}

	return nil
}

// ReadSafeTensors reads a safetensors stream holding F32 or F64 tensors.  F32
// values are widened to float64.  Non-finite values are rejected.
func ReadSafeTensors(r io.Reader) (map[string]*Tensor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("while reading safetensors: %w", err)
	}
	if len(raw) < 8 {
		return nil, fmt.Errorf("while reading header length: %w", io.ErrUnexpectedEOF)
	}

	headerLen := binary.LittleEndian.Uint64(raw[:8])
	if headerLen > uint64(len(raw)-8) {
		return nil, fmt.Errorf("while reading header: length %d exceeds file size", headerLen)
	}
	headerBytes := raw[8 : 8+headerLen]
	data := raw[8+headerLen:]

	entries := map[string]json.RawMessage{}
	if err := json.NewDecoder(bytes.NewReader(headerBytes)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("while reading header: %w", err)
	}

	tensors := map[string]*Tensor{}
	for k, entry := range entries {
		if k == "__metadata__" {
			continue
		}

		var hdr SafeTensorInfo
		if err := json.Unmarshal(entry, &hdr); err != nil {
			return nil, fmt.Errorf("while reading header for %s: %w", k, err)
		}
		if len(hdr.Shape) == 0 || len(hdr.Shape) > 2 {
			return nil, fmt.Errorf("unsupported shape %v for %s", hdr.Shape, k)
		}

		size := 1
		for _, s := range hdr.Shape {
			if s < 1 || s > len(data)/size {
				return nil, fmt.Errorf("bad shape %v for %s", hdr.Shape, k)
			}
			size *= s
		}

		var width int
		switch hdr.DType {
		case "F32":
			width = 4
		case "F64":
			width = 8
		default:
			return nil, fmt.Errorf("unsupported dtype %s for %s", hdr.DType, k)
		}

		if len(hdr.DataOffsets) != 2 {
			return nil, fmt.Errorf("bad data offsets %v for %s", hdr.DataOffsets, k)
		}
		begin, end := hdr.DataOffsets[0], hdr.DataOffsets[1]
		if begin < 0 || end > len(data) || end-begin != size*width {
			return nil, fmt.Errorf("data offsets %v for %s do not match shape %v", hdr.DataOffsets, k, hdr.Shape)
		}

		var v []float64
		if width == 4 {
			v, err = decodeF32(data[begin:end])
		} else {
			v, err = decodeF64(data[begin:end])
		}
		if err != nil {
			return nil, fmt.Errorf("while decoding %s: %w", k, err)
		}

		tensors[k] = &Tensor{V: v, Shape: hdr.Shape}
	}

	return tensors, nil
}

func decodeF32(b []byte) ([]float64, error) {
	out := make([]float64, len(b)/4)
	for i := range out {
		f := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrNonFinite, f, i)
		}
		out[i] = float64(f)
	}
	return out, nil
}

func decodeF64(b []byte) ([]float64, error) {
	out := make([]float64, len(b)/8)
	for i := range out {
		f := math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrNonFinite, f, i)
		}
		out[i] = f
	}
	return out, nil
}

func weightKey(l int) string {
	return fmt.Sprintf("net.%d.weights", l)
}

func biasKey(l int) string {
	return fmt.Sprintf("net.%d.biases", l)
}

// DumpTensors stores the network parameters under the keys net.{0,1}.weights
// (shape (out, in)) and net.{0,1}.biases (shape (out)).
func (net *Network) DumpTensors(tensors map[string]*Tensor) {
	for l, lay := range []*Layer{net.Hidden, net.Output} {
		tensors[weightKey(l)] = &Tensor{V: lay.W, Shape: []int{lay.OutputSize, lay.InputSize}}
		tensors[biasKey(l)] = &Tensor{V: lay.B, Shape: []int{lay.OutputSize}}
	}
}

// LoadNetwork rebuilds a network from the tensors written by DumpTensors.
// Layer sizes come from the weight shapes.
func LoadNetwork(tensors map[string]*Tensor) (*Network, error) {
	layers := make([]*Layer, 2)
	for l := range layers {
		w, ok := tensors[weightKey(l)]
		if !ok {
			return nil, fmt.Errorf("no entry for %s", weightKey(l))
		}
		if len(w.Shape) != 2 {
			return nil, fmt.Errorf("%w: %s has shape %v, want (out, in)", ErrShape, weightKey(l), w.Shape)
		}
		outputSize, inputSize := w.Shape[0], w.Shape[1]

		b, ok := tensors[biasKey(l)]
		if !ok {
			return nil, fmt.Errorf("no entry for %s", biasKey(l))
		}
		// Biases may be stored as a column vector.
		if !slices.Equal(b.Shape, []int{outputSize}) && !slices.Equal(b.Shape, []int{outputSize, 1}) {
			return nil, fmt.Errorf("%w: %s has shape %v, want (%d)", ErrShape, biasKey(l), b.Shape, outputSize)
		}

		lay, err := MakeDense(inputSize, outputSize, w.V, b.V)
		if err != nil {
			return nil, fmt.Errorf("while building layer %d: %w", l, err)
		}
		layers[l] = lay
	}

	return NewNetwork(layers[0], layers[1])
}

// LoadWeights reads a network from a .npz or .safetensors file.
func LoadWeights(path string) (*Network, error) {
	if strings.EqualFold(filepath.Ext(path), ".npz") {
		return ReadNPZWeights(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening weights file: %w", err)
	}
	defer f.Close()

	tensors, err := ReadSafeTensors(f)
	if err != nil {
		return nil, fmt.Errorf("while reading weight tensors: %w", err)
	}

	net, err := LoadNetwork(tensors)
	if err != nil {
		return nil, fmt.Errorf("while restoring network: %w", err)
	}
	return net, nil
}
