package infer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"yashubustudio/biaslab/demographics"
)

// Label sets for the attribute models, in output order.
var (
	GenderLabels = []string{"Woman", "Man"}
	RaceLabels   = []string{"asian", "indian", "black", "white", "middle eastern", "latino hispanic"}
)

// FaceConfig locates the three attribute models.
type FaceConfig struct {
	LibraryPath string
	AgeModel    string
	GenderModel string
	RaceModel   string
	// InputSize is the square edge expected by all three models.
	InputSize int
}

// FaceAnalyzer predicts apparent age, gender and race from a whole image.
// No face detection or alignment is done; the full frame is classified.
type FaceAnalyzer struct {
	once   sync.Once
	age    *ImageClassifier
	gender *ImageClassifier
	race   *ImageClassifier
}

var _ demographics.Analyzer = (*FaceAnalyzer)(nil)

// NewFaceAnalyzer initializes onnxruntime and opens the three models.
func NewFaceAnalyzer(cfg FaceConfig) (*FaceAnalyzer, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 224
	}
	if err := Init(cfg.LibraryPath); err != nil {
		return nil, err
	}
	fa := &FaceAnalyzer{}
	var err error
	if fa.age, err = NewImageClassifier(cfg.AgeModel, cfg.InputSize); err != nil {
		fa.Close()
		return nil, fmt.Errorf("load age model: %w", err)
	}
	if fa.gender, err = NewImageClassifier(cfg.GenderModel, cfg.InputSize); err != nil {
		fa.Close()
		return nil, fmt.Errorf("load gender model: %w", err)
	}
	if fa.gender.Classes() != len(GenderLabels) {
		fa.Close()
		return nil, fmt.Errorf("gender model has %d classes, want %d", fa.gender.Classes(), len(GenderLabels))
	}
	if fa.race, err = NewImageClassifier(cfg.RaceModel, cfg.InputSize); err != nil {
		fa.Close()
		return nil, fmt.Errorf("load race model: %w", err)
	}
	if fa.race.Classes() != len(RaceLabels) {
		fa.Close()
		return nil, fmt.Errorf("race model has %d classes, want %d", fa.race.Classes(), len(RaceLabels))
	}
	return fa, nil
}

// Analyze decodes the image at path and runs the three models on it.
func (fa *FaceAnalyzer) Analyze(ctx context.Context, path string) (demographics.Attributes, error) {
	if err := ctx.Err(); err != nil {
		return demographics.Attributes{}, err
	}
	img, err := LoadImage(path)
	if err != nil {
		return demographics.Attributes{}, err
	}
	ageProbs, err := fa.age.Predict(img)
	if err != nil {
		return demographics.Attributes{}, fmt.Errorf("predict age: %w", err)
	}
	genderProbs, err := fa.gender.Predict(img)
	if err != nil {
		return demographics.Attributes{}, fmt.Errorf("predict gender: %w", err)
	}
	raceProbs, err := fa.race.Predict(img)
	if err != nil {
		return demographics.Attributes{}, fmt.Errorf("predict race: %w", err)
	}
	gender, err := DominantLabel(genderProbs, GenderLabels)
	if err != nil {
		return demographics.Attributes{}, err
	}
	race, err := DominantLabel(raceProbs, RaceLabels)
	if err != nil {
		return demographics.Attributes{}, err
	}
	return demographics.Attributes{
		Gender: gender,
		Age:    ApparentAge(ageProbs),
		Race:   race,
	}, nil
}

// Close releases every opened model and one onnxruntime reference.
func (fa *FaceAnalyzer) Close() error {
	var errs []error
	fa.once.Do(func() {
		for _, c := range []*ImageClassifier{fa.age, fa.gender, fa.race} {
			if c != nil {
				errs = append(errs, c.Close())
			}
		}
		Shutdown()
	})
	return errors.Join(errs...)
}

// ApparentAge is the expected age over one-year bins, rounded to whole years.
func ApparentAge(probs []float32) string {
	return strconv.Itoa(int(math.Round(ExpectedIndex(probs))))
}

// DominantLabel returns the label with the highest probability.
func DominantLabel(probs []float32, labels []string) (string, error) {
	if len(probs) != len(labels) {
		return "", fmt.Errorf("got %d scores for %d labels", len(probs), len(labels))
	}
	best := Argmax(probs)
	if best < 0 {
		return "", errors.New("no scores")
	}
	return labels[best], nil
}
