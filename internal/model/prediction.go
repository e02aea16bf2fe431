package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type RankedPrediction struct {
	ClassName   string  `json:"class_name,omitempty"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
}

type NutrientAmount struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

type Serving struct {
	Size *float64 `json:"size"`
	Unit string   `json:"unit"`
}

type Nutrients struct {
	Calories      *NutrientAmount `json:"calories,omitempty"`
	Protein       *NutrientAmount `json:"protein,omitempty"`
	Carbohydrates *NutrientAmount `json:"carbohydrates,omitempty"`
	Fat           *NutrientAmount `json:"fat,omitempty"`
	Fiber         *NutrientAmount `json:"fiber,omitempty"`
	Sugar         *NutrientAmount `json:"sugar,omitempty"`
	Sodium        *NutrientAmount `json:"sodium,omitempty"`
}

type Nutrition struct {
	FoodName  string    `json:"food_name"`
	Serving   *Serving  `json:"serving,omitempty"`
	Nutrients Nutrients `json:"nutrients"`
}

type ScoreAdjustment struct {
	Penalty float64 `json:"penalty,omitempty"`
	Bonus   float64 `json:"bonus,omitempty"`
}

type ScoreBreakdown struct {
	BaseScore  float64                    `json:"base_score"`
	Penalties  map[string]ScoreAdjustment `json:"penalties,omitempty"`
	Bonuses    map[string]ScoreAdjustment `json:"bonuses,omitempty"`
	FinalScore float64                    `json:"final_score"`
}

type Healthiness struct {
	Score     float64         `json:"score"`
	Category  string          `json:"category"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
}

type PortionEstimate struct {
	EstimatedServing  string  `json:"estimated_serving"`
	PortionMultiplier float64 `json:"portion_multiplier"`
	Confidence        string  `json:"confidence"`
	Note              string  `json:"note,omitempty"`
}

type Alternative struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Benefit     string `json:"benefit"`
}

// Alternatives is either a structured list or free text. The backend sends
// it as an array, a bare string, or an object wrapping one of the two under
// "alternatives" / "alternatives_text".
type Alternatives struct {
	Items []Alternative `json:"alternatives,omitempty"`
	Text  string        `json:"alternatives_text,omitempty"`
}

func (a Alternatives) Empty() bool {
	return len(a.Items) == 0 && a.Text == ""
}

func (a *Alternatives) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*a = Alternatives{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		return json.Unmarshal(b, &a.Text)
	case '[':
		return json.Unmarshal(b, &a.Items)
	case '{':
		var wrapped struct {
			Alternatives     json.RawMessage `json:"alternatives"`
			AlternativesText string          `json:"alternatives_text"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		if len(wrapped.Alternatives) > 0 {
			if err := a.UnmarshalJSON(wrapped.Alternatives); err != nil {
				return err
			}
		}
		if a.Empty() {
			a.Text = wrapped.AlternativesText
		}
		return nil
	default:
		return fmt.Errorf("unexpected alternatives payload %q", string(b))
	}
}

// Analysis is the confidence-dependent part of a PredictionResult:
// *HighConfidence or *LowConfidence.
type Analysis interface {
	lowConfidence() bool
}

type HighConfidence struct {
	Nutrition             *Nutrition
	Healthiness           *Healthiness
	Portion               *PortionEstimate
	Recommendations       []string
	ProactiveAlternatives *Alternatives
	ShowAlternatives      bool
	// NutritionError is the server's explanation when Nutrition is absent.
	NutritionError string
}

func (*HighConfidence) lowConfidence() bool { return false }

type LowConfidence struct {
	Advice     string
	Disclaimer string
}

func (*LowConfidence) lowConfidence() bool { return true }

type PredictionResult struct {
	FoodName       string
	Confidence     float64
	TopPredictions []RankedPrediction
	Analysis       Analysis
}

func (r PredictionResult) LowConfidence() bool {
	return r.Analysis != nil && r.Analysis.lowConfidence()
}

func (r PredictionResult) High() (*HighConfidence, bool) {
	h, ok := r.Analysis.(*HighConfidence)
	return h, ok
}

func (r PredictionResult) Low() (*LowConfidence, bool) {
	l, ok := r.Analysis.(*LowConfidence)
	return l, ok
}

// OtherPossibilities returns up to n ranked predictions after the top one.
func (r PredictionResult) OtherPossibilities(n int) []RankedPrediction {
	if len(r.TopPredictions) <= 1 {
		return nil
	}
	rest := r.TopPredictions[1:]
	if len(rest) > n {
		rest = rest[:n]
	}
	return rest
}

type predictionWire struct {
	FoodName              string             `json:"food_name"`
	Confidence            float64            `json:"confidence"`
	TopPredictions        []RankedPrediction `json:"top_predictions,omitempty"`
	LowConfidence         bool               `json:"low_confidence"`
	Nutrition             *Nutrition         `json:"nutrition,omitempty"`
	Healthiness           *Healthiness       `json:"healthiness,omitempty"`
	PortionEstimate       *PortionEstimate   `json:"portion_estimate,omitempty"`
	Recommendations       []string           `json:"recommendations,omitempty"`
	ProactiveAlternatives *Alternatives      `json:"proactive_alternatives,omitempty"`
	ShowAlternatives      bool               `json:"show_alternatives,omitempty"`
	LLMAdvice             string             `json:"llm_advice,omitempty"`
	Disclaimer            string             `json:"disclaimer,omitempty"`
	Error                 string             `json:"error,omitempty"`
}

func (r *PredictionResult) UnmarshalJSON(b []byte) error {
	var w predictionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Confidence < 0 || w.Confidence > 100 {
		return fmt.Errorf("confidence %.2f out of range 0-100", w.Confidence)
	}
	*r = PredictionResult{
		FoodName:       w.FoodName,
		Confidence:     w.Confidence,
		TopPredictions: w.TopPredictions,
	}
	if w.LowConfidence {
		r.Analysis = &LowConfidence{Advice: w.LLMAdvice, Disclaimer: w.Disclaimer}
		return nil
	}
	r.Analysis = &HighConfidence{
		Nutrition:             w.Nutrition,
		Healthiness:           w.Healthiness,
		Portion:               w.PortionEstimate,
		Recommendations:       w.Recommendations,
		ProactiveAlternatives: w.ProactiveAlternatives,
		ShowAlternatives:      w.ShowAlternatives,
		NutritionError:        w.Error,
	}
	return nil
}

func (r PredictionResult) MarshalJSON() ([]byte, error) {
	w := predictionWire{
		FoodName:       r.FoodName,
		Confidence:     r.Confidence,
		TopPredictions: r.TopPredictions,
	}
	switch a := r.Analysis.(type) {
	case *LowConfidence:
		w.LowConfidence = true
		w.LLMAdvice = a.Advice
		w.Disclaimer = a.Disclaimer
	case *HighConfidence:
		w.Nutrition = a.Nutrition
		w.Healthiness = a.Healthiness
		w.PortionEstimate = a.Portion
		w.Recommendations = a.Recommendations
		w.ProactiveAlternatives = a.ProactiveAlternatives
		w.ShowAlternatives = a.ShowAlternatives
		w.Error = a.NutritionError
	}
	return json.Marshal(w)
}
