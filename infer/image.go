package infer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"
)

// LoadImage decodes a PNG, JPEG or GIF file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// ImageTensor resizes img to size x size and lays it out as NHWC RGB
// float32 values scaled to [0, 1].
func ImageTensor(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	bounds := resized.Bounds()
	out := make([]float32, 0, size*size*3)
	for y := bounds.Min.Y; y < bounds.Min.Y+size; y++ {
		for x := bounds.Min.X; x < bounds.Min.X+size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			out = append(out,
				float32(r>>8)/255,
				float32(g>>8)/255,
				float32(b>>8)/255,
			)
		}
	}
	return out
}

// ImageClassifier runs a model taking one square NHWC image and returning a
// score vector. The onnxruntime environment must be initialized first.
type ImageClassifier struct {
	mu      sync.Mutex
	path    string
	size    int
	classes int
	session *ort.DynamicAdvancedSession
}

// NewImageClassifier opens modelPath. size is the square input edge in pixels.
func NewImageClassifier(modelPath string, size int) (*ImageClassifier, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid input size %d", size)
	}
	model, err := inspectModel(modelPath)
	if err != nil {
		return nil, err
	}
	dims := model.outputs[0].Dimensions
	if len(dims) == 0 || dims[len(dims)-1] <= 0 {
		return nil, fmt.Errorf("model %s has no fixed class dimension", modelPath)
	}
	classes := int(dims[len(dims)-1])
	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{model.inputs[0].Name}, []string{model.outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", modelPath, err)
	}
	return &ImageClassifier{path: modelPath, size: size, classes: classes, session: session}, nil
}

// Classes returns the length of the score vector.
func (c *ImageClassifier) Classes() int {
	return c.classes
}

// Predict returns the class probabilities for img.
func (c *ImageClassifier) Predict(img image.Image) ([]float32, error) {
	pixels := ImageTensor(img, c.size)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, ErrNotInitialized
	}
	in, err := ort.NewTensor(ort.NewShape(1, int64(c.size), int64(c.size), 3), pixels)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer in.Destroy()
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(c.classes)))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer out.Destroy()
	if err := c.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("run %s: %w", c.path, err)
	}
	scores := make([]float32, c.classes)
	copy(scores, out.GetData())
	if !isDistribution(scores) {
		scores = Softmax(scores)
	}
	return scores, nil
}

// Close destroys the session.
func (c *ImageClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Destroy()
	c.session = nil
	return err
}
