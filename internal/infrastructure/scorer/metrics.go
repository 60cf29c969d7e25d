package scorer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModelMetrics are the offline cross-validation metrics exported by the
// training pipeline. Served read-only; the engine never recomputes them.
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
}

// LoadModelMetrics reads the metrics file written alongside the model
// artifact.
func LoadModelMetrics(path string) (*ModelMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model metrics: %w", err)
	}

	var metrics ModelMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("parsing model metrics: %w", err)
	}
	return &metrics, nil
}
