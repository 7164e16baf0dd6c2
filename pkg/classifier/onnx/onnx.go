// Package onnx scores rasters with frozen networks exported to ONNX and run
// through ONNX Runtime.
package onnx

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"

	"github.com/JaimeStill/numeral/pkg/classifier"
	"github.com/JaimeStill/numeral/pkg/raster"
)

var (
	InputShape  = []int64{1, 1, raster.Height, raster.Width}
	OutputShape = []int64{1, classifier.Digits}
)

var (
	initOnce sync.Once
	initErr  error
)

// Init prepares the ONNX Runtime environment. libraryPath names the shared
// library; empty leaves the runtime's default lookup in place. Only the first
// call has any effect.
func Init(libraryPath string) error {
	initOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			initErr = fmt.Errorf("initialize onnx environment: %w", err)
		}
	})
	return initErr
}

// Destroy releases the ONNX Runtime environment once all networks are closed.
func Destroy() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Config names the graph's input and output nodes.
type Config struct {
	InputName  string
	OutputName string
}

func (c *Config) defaults() {
	if c.InputName == "" {
		c.InputName = "input"
	}
	if c.OutputName == "" {
		c.OutputName = "output"
	}
}

// Metadata is the optional JSON sidecar exported next to a model file.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// MetadataPath returns the sidecar location for a model file: model.onnx → model.json.
func MetadataPath(modelPath string) string {
	return strings.TrimSuffix(modelPath, ".onnx") + ".json"
}

// ReadMetadata loads the sidecar for modelPath. A missing sidecar is not an error.
func ReadMetadata(modelPath string) (*Metadata, error) {
	data, err := os.ReadFile(MetadataPath(modelPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &meta, nil
}

// Validate fails with raster.ErrShapeMismatch when the declared graph shapes
// differ from the raster input and digit output.
func (m *Metadata) Validate() error {
	if len(m.InputShape) > 0 && !slices.Equal(m.InputShape, InputShape) {
		return fmt.Errorf("%w: model input %v, expected %v", raster.ErrShapeMismatch, m.InputShape, InputShape)
	}
	if len(m.OutputShape) > 0 && !slices.Equal(m.OutputShape, OutputShape) {
		return fmt.Errorf("%w: model output %v, expected %v", raster.ErrShapeMismatch, m.OutputShape, OutputShape)
	}
	if len(m.Classes) > 0 && len(m.Classes) != classifier.Digits {
		return fmt.Errorf("%w: model declares %d classes, expected %d", raster.ErrShapeMismatch, len(m.Classes), classifier.Digits)
	}
	return nil
}

// Network is a loaded ONNX session with pre-allocated input and output tensors.
// Runs are serialized because the tensors are shared.
type Network struct {
	mu       sync.Mutex
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	Metadata *Metadata
}

// Load opens the model at path. Init must have succeeded first.
func Load(path string, cfg Config) (*Network, error) {
	cfg.defaults()

	meta, err := ReadMetadata(path)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		if err := meta.Validate(); err != nil {
			return nil, err
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(InputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session %s: %w", path, err)
	}

	return &Network{
		session:  session,
		input:    input,
		output:   output,
		Metadata: meta,
	}, nil
}

// Logits copies the (1, 28, 28) plane into the session input and runs the graph.
func (n *Network) Logits(input *tensor.Dense) ([]float32, error) {
	if err := classifier.CheckInput(input); err != nil {
		return nil, err
	}

	data, ok := input.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: input must be float32, got %v", raster.ErrShapeMismatch, input.Dtype())
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.session == nil {
		return nil, errors.New("network closed")
	}

	copy(n.input.GetData(), data)

	if err := n.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return slices.Clone(n.output.GetData()), nil
}

// Close destroys the session and its tensors.
func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var errs []error
	if n.session != nil {
		errs = append(errs, n.session.Destroy())
		n.session = nil
	}
	if n.input != nil {
		errs = append(errs, n.input.Destroy())
		n.input = nil
	}
	if n.output != nil {
		errs = append(errs, n.output.Destroy())
		n.output = nil
	}
	return errors.Join(errs...)
}
