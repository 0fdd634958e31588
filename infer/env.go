package infer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ErrNotInitialized is returned when a model is used after Close.
var ErrNotInitialized = errors.New("model is not initialized")

var (
	envMu   sync.Mutex
	envRefs int
	envLib  string
)

// Init loads the onnxruntime shared library and initializes the process-wide
// environment. Calls are reference counted and must be paired with Shutdown.
// An empty libraryPath keeps onnxruntime_go's platform default.
func Init(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	libraryPath = strings.TrimSpace(libraryPath)
	if envRefs > 0 {
		if libraryPath != "" && envLib != "" && libraryPath != envLib {
			return fmt.Errorf("onnxruntime already initialized with %s", envLib)
		}
		envRefs++
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	envLib = libraryPath
	envRefs = 1
	return nil
}

// Shutdown releases one Init reference and destroys the environment when
// the last one is released.
func Shutdown() {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		return
	}
	envRefs--
	if envRefs == 0 {
		_ = ort.DestroyEnvironment()
		envLib = ""
	}
}

type modelIO struct {
	inputs  []ort.InputOutputInfo
	outputs []ort.InputOutputInfo
}

func inspectModel(path string) (modelIO, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return modelIO{}, fmt.Errorf("inspect model %s: %w", path, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return modelIO{}, fmt.Errorf("model %s declares no inputs or outputs", path)
	}
	return modelIO{inputs: inputs, outputs: outputs}, nil
}

func (m modelIO) hasInput(name string) bool {
	for _, in := range m.inputs {
		if in.Name == name {
			return true
		}
	}
	return false
}

func destroyAll(values ...ort.Value) {
	for _, v := range values {
		if v != nil {
			_ = v.Destroy()
		}
	}
}
