package retention

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"hr-analytics/internal/llm/openai"
)

type stubChat struct {
	messages []openai.Message
	opts     openai.Options
	out      string
	err      error
}

func (s *stubChat) Chat(_ context.Context, messages []openai.Message, opts openai.Options) (string, error) {
	s.messages = messages
	s.opts = opts
	return s.out, s.err
}

func loadTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := LoadModel("testdata/model.json")
	require.NoError(t, err)
	return m
}

func TestScore(t *testing.T) {
	p := NewPredictor(loadTestModel(t), ChatAdvisor{Client: &stubChat{}})

	tests := []struct {
		name      string
		data      map[string]any
		wantLabel int
		wantProb  float64
	}{
		{
			name: "unhappy and overworked",
			data: map[string]any{
				"satisfaction_level":    0.11,
				"last_evaluation":       0.88,
				"number_project":        5.0,
				"average_monthly_hours": 272.0,
				"time_spend_company":    4.0,
				"work_accident":         0.0,
				"promotion_last_5years": 0.0,
				"department":            "sales",
				"salary":                "medium",
			},
			wantLabel: 1,
			wantProb:  0.75,
		},
		{
			name: "numeric strings are coerced",
			data: map[string]any{
				"satisfaction_level":    "0.9",
				"last_evaluation":       "0.5",
				"average_monthly_hours": "150",
				"salary":                "high",
			},
			wantLabel: 0,
			wantProb:  0.125,
		},
		{
			name:      "missing department and fields default to zero",
			data:      map[string]any{"unknown_field": "ignored"},
			wantLabel: 0,
			wantProb:  0.5,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			label, prob, err := p.Score(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.wantLabel, label)
			require.InDelta(t, tt.wantProb, prob, 1e-9)
		})
	}
}

func TestScoreConversionErrors(t *testing.T) {
	p := NewPredictor(loadTestModel(t), ChatAdvisor{Client: &stubChat{}})

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{name: "non numeric field", data: map[string]any{"satisfaction_level": "abc"}, want: "could not convert string to float: 'abc'"},
		{name: "non numeric model column", data: map[string]any{"number_project": "many"}, want: "could not convert string to float: 'many'"},
		{name: "unknown salary", data: map[string]any{"salary": "huge"}, want: "Input X contains NaN."},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := p.Score(tt.data)
			require.ErrorIs(t, err, ErrConversion)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestFeaturesOneHotAndOrder(t *testing.T) {
	cols := []string{"salary", "department_sales", "department_hr", "satisfaction_level"}
	x, err := Features(map[string]any{
		"department":         "sales",
		"salary":             "low",
		"satisfaction_level": true,
		"extra":              map[string]any{"nested": 1},
	}, cols)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 0, 1}, x)
}

func TestForestSingleClassYieldsZeroProbability(t *testing.T) {
	m := &Model{
		Columns: []string{"a"},
		Scaler:  Scaler{Mean: []float64{0}, Scale: []float64{1}},
		Forest: Forest{Classes: []int{0}, Trees: []Tree{{
			ChildrenLeft: []int{-1}, ChildrenRight: []int{-1}, Feature: []int{-2}, Threshold: []float64{-2}, Value: [][]float64{{5}},
		}}},
	}
	require.NoError(t, m.validate())

	label, prob, err := NewPredictor(m, nil).Score(map[string]any{"a": 1.0})
	require.NoError(t, err)
	require.Equal(t, 0, label)
	require.Zero(t, prob)
	require.False(t, math.IsNaN(prob))
}

func TestLoadModelRejectsMismatchedScaler(t *testing.T) {
	m := loadTestModel(t)
	m.Scaler.Mean = m.Scaler.Mean[:2]
	require.Error(t, m.validate())

	_, err := LoadModel("testdata/missing.json")
	require.Error(t, err)
}

func TestChatAdvisor(t *testing.T) {
	chat := &stubChat{out: "Offer a promotion path."}
	a := ChatAdvisor{Client: chat}

	got := a.Recommend(context.Background(), 1, 0.756, map[string]any{"salary": "low"})
	require.Equal(t, "Offer a promotion path.", got)
	require.Len(t, chat.messages, 2)
	require.Equal(t, "You are an HR assistant providing concise retention advice.", chat.messages[0].Content)
	require.Contains(t, chat.messages[1].Content, "Prediction: Likely to leave.")
	require.Contains(t, chat.messages[1].Content, "Probability of leaving: 0.76.")
	require.Contains(t, chat.messages[1].Content, `"salary":"low"`)
	require.Equal(t, 450, chat.opts.MaxTokens)
	require.NotNil(t, chat.opts.Temperature)
	require.InDelta(t, 0.7, *chat.opts.Temperature, 1e-6)

	chat.err = errors.New("quota exceeded")
	require.Equal(t, "Error generating recommendations: quota exceeded", a.Recommend(context.Background(), 0, 0.1, nil))
}
