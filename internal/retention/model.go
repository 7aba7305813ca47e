package retention

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Model is the immutable set of classifier artifacts: training column order,
// standard-scaler statistics and a random forest exported from scikit-learn.
type Model struct {
	Columns []string `json:"columns"`
	Scaler  Scaler   `json:"scaler"`
	Forest  Forest   `json:"forest"`
}

// Scaler holds per-column mean and scale in column order.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadModel reads an artifacts file and validates its shape.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifacts: %w", err)
	}
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model artifacts: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model artifacts %s: %w", path, err)
	}
	return &m, nil
}

func (m *Model) validate() error {
	n := len(m.Columns)
	if n == 0 {
		return errors.New("no columns")
	}
	if len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n {
		return fmt.Errorf("scaler has %d/%d values for %d columns", len(m.Scaler.Mean), len(m.Scaler.Scale), n)
	}
	return m.Forest.validate(n)
}

// Transform applies standard scaling in place. A zero scale leaves the
// centred value unscaled, as scikit-learn does.
func (s Scaler) Transform(x []float64) {
	for i := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		x[i] = (x[i] - s.Mean[i]) / scale
	}
}
