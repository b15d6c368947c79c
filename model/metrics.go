package model

// Metrics are the binary classification scores with class 1 as positive.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	// Confusion is indexed [true][predicted].
	Confusion [][]int `json:"confusion_matrix"`
}

// Evaluate scores predictions. Undefined ratios are reported as 0.
func Evaluate(yTrue, yPred []int) Metrics {
	cm := [][]int{{0, 0}, {0, 0}}
	correct := 0
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t == p {
			correct++
		}
		if t >= 0 && t < 2 && p >= 0 && p < 2 {
			cm[t][p]++
		}
	}

	m := Metrics{Confusion: cm}
	if len(yTrue) > 0 {
		m.Accuracy = float64(correct) / float64(len(yTrue))
	}
	tp, fp, fn := cm[1][1], cm[0][1], cm[1][0]
	m.Precision = ratio(tp, tp+fp)
	m.Recall = ratio(tp, tp+fn)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
