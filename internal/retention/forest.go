package retention

import (
	"errors"
	"fmt"
)

const leaf = -1

// Forest is a random-forest classifier. Classes lists the label of each
// probability slot.
type Forest struct {
	Classes []int  `json:"classes"`
	Trees   []Tree `json:"trees"`
}

// Tree uses scikit-learn's parallel-array layout. Value holds per-class
// weights for every node; only leaves are read.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (f Forest) validate(features int) error {
	if len(f.Classes) == 0 {
		return errors.New("forest has no classes")
	}
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, t := range f.Trees {
		if err := t.validate(features, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t Tree) validate(features, classes int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if len(t.Value[i]) != classes {
				return fmt.Errorf("leaf %d has %d class weights, want %d", i, len(t.Value[i]), classes)
			}
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has invalid children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= features {
			return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// proba walks to the leaf for x and returns its normalised class weights.
func (t Tree) proba(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	weights := t.Value[node]
	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := make([]float64, len(weights))
	if total == 0 {
		return out
	}
	for i, w := range weights {
		out[i] = w / total
	}
	return out
}

// PredictProba averages the per-tree class probabilities.
func (f Forest) PredictProba(x []float64) []float64 {
	sum := make([]float64, len(f.Classes))
	for _, t := range f.Trees {
		for i, p := range t.proba(x) {
			sum[i] += p
		}
	}
	for i := range sum {
		sum[i] /= float64(len(f.Trees))
	}
	return sum
}

// Predict returns the class with the highest mean probability. Ties go to
// the first class.
func (f Forest) Predict(proba []float64) int {
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return f.Classes[best]
}
