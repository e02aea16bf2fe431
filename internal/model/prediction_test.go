package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomie/foodlens/internal/model"
)

func TestLowConfidenceResultNeedsNoNutrition(t *testing.T) {
	t.Parallel()

	var r model.PredictionResult
	err := json.Unmarshal([]byte(`{
  "success": true,
  "food_name": "Pad Thai",
  "confidence": 35,
  "low_confidence": true,
  "llm_advice": "Noodle dishes vary widely in calories.",
  "disclaimer": "General information only."
}`), &r)
	require.NoError(t, err)

	assert.True(t, r.LowConfidence())
	low, ok := r.Low()
	require.True(t, ok)
	assert.Equal(t, "Noodle dishes vary widely in calories.", low.Advice)
	assert.Equal(t, "General information only.", low.Disclaimer)
	_, isHigh := r.High()
	assert.False(t, isHigh)
}

func TestHighConfidenceResultCarriesAnalysis(t *testing.T) {
	t.Parallel()

	var r model.PredictionResult
	err := json.Unmarshal([]byte(`{
  "food_name": "Pizza",
  "confidence": 91.2,
  "low_confidence": false,
  "top_predictions": [
    {"display_name": "Pizza", "confidence": 91.2},
    {"display_name": "Flatbread", "confidence": 4.1},
    {"display_name": "Lasagna", "confidence": 2.0},
    {"display_name": "Calzone", "confidence": 1.1},
    {"display_name": "Quiche", "confidence": 0.5}
  ],
  "nutrition": {"food_name": "pizza", "serving": {"size": 107, "unit": "g"}, "nutrients": {"calories": {"value": 285, "unit": "kcal"}, "fiber": {"value": null, "unit": "g"}}},
  "healthiness": {"score": 42, "category": "Moderate", "breakdown": {"base_score": 50, "penalties": {"sodium": {"penalty": 12.5}}, "bonuses": {"protein": {"bonus": 4.5}}, "final_score": 42}},
  "portion_estimate": {"estimated_serving": "1 slice", "portion_multiplier": 1.5, "confidence": "medium"},
  "recommendations": ["Pair with a salad"],
  "proactive_alternatives": {"alternatives": [{"name": "Whole wheat pizza", "explanation": "More fiber", "benefit": "Fuller for longer"}]},
  "show_alternatives": true
}`), &r)
	require.NoError(t, err)

	high, ok := r.High()
	require.True(t, ok)
	require.NotNil(t, high.Nutrition)
	assert.Equal(t, 285.0, *high.Nutrition.Nutrients.Calories.Value)
	assert.Nil(t, high.Nutrition.Nutrients.Fiber.Value)
	assert.Equal(t, 12.5, high.Healthiness.Breakdown.Penalties["sodium"].Penalty)
	assert.Equal(t, 1.5, high.Portion.PortionMultiplier)
	require.NotNil(t, high.ProactiveAlternatives)
	assert.Len(t, high.ProactiveAlternatives.Items, 1)
	assert.True(t, high.ShowAlternatives)

	others := r.OtherPossibilities(3)
	require.Len(t, others, 3)
	assert.Equal(t, "Flatbread", others[0].DisplayName)
	assert.Equal(t, "Calzone", others[2].DisplayName)
}

func TestPredictionResultRoundTripKeepsBranch(t *testing.T) {
	t.Parallel()

	in := model.PredictionResult{
		FoodName:   "Soup",
		Confidence: 20,
		Analysis:   &model.LowConfidence{Advice: "Broths are usually light."},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out model.PredictionResult
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, out.LowConfidence())
	low, _ := out.Low()
	assert.Equal(t, "Broths are usually light.", low.Advice)
}

func TestPredictionResultRejectsConfidenceOutOfRange(t *testing.T) {
	t.Parallel()

	var r model.PredictionResult
	err := json.Unmarshal([]byte(`{"food_name": "x", "confidence": 140}`), &r)
	assert.Error(t, err)
}

func TestAlternativesAcceptsTextAndListForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want model.Alternatives
	}{
		{raw: `"Try grilled chicken."`, want: model.Alternatives{Text: "Try grilled chicken."}},
		{raw: `{"alternatives_text": "Try fruit."}`, want: model.Alternatives{Text: "Try fruit."}},
		{raw: `{"alternatives": "Try yogurt."}`, want: model.Alternatives{Text: "Try yogurt."}},
		{
			raw:  `[{"name": "Oats", "explanation": "e", "benefit": "b"}]`,
			want: model.Alternatives{Items: []model.Alternative{{Name: "Oats", Explanation: "e", Benefit: "b"}}},
		},
	}
	for _, tc := range cases {
		var got model.Alternatives
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &got), tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestMessageIDAcceptsNumbers(t *testing.T) {
	t.Parallel()

	var msgs []model.Message
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 17, "role": "user", "content": "hi"}, {"id": "abc", "role": "assistant", "content": "hello"}]`), &msgs))
	assert.Equal(t, model.MessageID("17"), msgs[0].ID)
	assert.Equal(t, model.MessageID("abc"), msgs[1].ID)
}

func TestProfileNormalizeCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	target := 1800
	p := model.Profile{
		HealthGoals:         []model.HealthGoal{model.GoalLoseWeight, model.GoalReduceSugar, model.GoalLoseWeight},
		DietaryRestrictions: []model.DietaryRestriction{model.RestrictionVegan, model.RestrictionVegan},
		Allergies:           []string{"peanuts", "", "shellfish"},
		CalorieTarget:       &target,
	}.Normalize()

	assert.Equal(t, []model.HealthGoal{model.GoalLoseWeight, model.GoalReduceSugar}, p.HealthGoals)
	assert.Equal(t, []model.DietaryRestriction{model.RestrictionVegan}, p.DietaryRestrictions)
	assert.Equal(t, []string{"peanuts", "shellfish"}, p.Allergies)
	assert.Equal(t, 1800, *p.CalorieTarget)

	empty := model.Profile{}.Normalize()
	b, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"health_goals": [], "dietary_restrictions": [], "allergies": [], "calorie_target": null}`, string(b))
}

func TestTimestampAcceptsZonelessValues(t *testing.T) {
	var m model.Meal
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"food_name":"pizza","logged_at":"2024-03-01T12:30:00.123456"}`), &m))
	require.NotNil(t, m.LoggedAt)
	assert.Equal(t, 12, m.LoggedAt.Hour())
	assert.Equal(t, time.UTC, m.LoggedAt.Location())

	var msg model.Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"role":"user","content":"hi","created_at":"2024-03-01T12:30:00Z"}`), &msg))
	assert.Equal(t, 30, msg.CreatedAt.Minute())

	assert.Error(t, json.Unmarshal([]byte(`{"logged_at":"yesterday"}`), &m))
}
