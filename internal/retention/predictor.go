package retention

import (
	"context"
	"math"
)

// Result is the /predict response body.
type Result struct {
	Prediction      int            `json:"prediction"`
	Probability     float64        `json:"probability"`
	Recommendations string         `json:"recommendations"`
	EmployeeData    map[string]any `json:"employee_data"`
}

// Predictor scores employee records against a loaded model.
type Predictor struct {
	model   *Model
	advisor Advisor
}

func NewPredictor(model *Model, advisor Advisor) *Predictor {
	return &Predictor{model: model, advisor: advisor}
}

// Score returns the predicted label and the probability of the second class.
func (p *Predictor) Score(data map[string]any) (int, float64, error) {
	x, err := Features(data, p.model.Columns)
	if err != nil {
		return 0, 0, err
	}
	p.model.Scaler.Transform(x)

	proba := p.model.Forest.PredictProba(x)
	label := p.model.Forest.Predict(proba)

	leaving := 0.0
	if len(proba) > 1 {
		leaving = proba[1]
	}
	if math.IsNaN(leaving) {
		leaving = 0
	}
	return label, leaving, nil
}

// Predict scores data and attaches recommendations.
func (p *Predictor) Predict(ctx context.Context, data map[string]any) (Result, error) {
	label, leaving, err := p.Score(data)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Prediction:      label,
		Probability:     leaving,
		Recommendations: p.advisor.Recommend(ctx, label, leaving, data),
		EmployeeData:    data,
	}, nil
}
