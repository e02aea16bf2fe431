package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wisdomie/foodlens/internal/model"
)

const noNutritionMessage = "Nutrition data is not available for this food item."

func (r *Renderer) Prediction(res model.PredictionResult) {
	r.printf("%s\n", r.bold.Render(res.FoodName))
	r.field("Confidence", fmt.Sprintf("%.1f%%", res.Confidence))

	if others := res.OtherPossibilities(3); len(others) > 0 {
		r.section("Other Possibilities")
		for _, p := range others {
			r.printf("  %-28s %5.1f%%\n", p.DisplayName, p.Confidence)
		}
	}

	switch a := res.Analysis.(type) {
	case *model.LowConfidence:
		r.lowConfidence(a)
	case *model.HighConfidence:
		r.highConfidence(res.FoodName, a)
	}
}

func (r *Renderer) lowConfidence(a *model.LowConfidence) {
	r.section("Low Confidence Detection")
	r.printf("The model is not very confident about this prediction. Here's some general information:\n")
	r.section("General Nutrition Information")
	r.printf("%s\n", a.Advice)
	if a.Disclaimer != "" {
		r.printf("%s\n", r.dim.Render(a.Disclaimer))
	}
}

func (r *Renderer) highConfidence(food string, a *model.HighConfidence) {
	if a.Nutrition == nil {
		msg := a.NutritionError
		if msg == "" {
			msg = noNutritionMessage
		}
		r.printf("\n%s\n", msg)
		return
	}
	if a.Healthiness != nil {
		r.Healthiness(*a.Healthiness)
	}
	if a.Portion != nil {
		r.Portion(*a.Portion)
	}
	r.Nutrition(*a.Nutrition)

	if len(a.Recommendations) > 0 {
		r.section("Recommendations")
		for _, rec := range a.Recommendations {
			r.printf("  - %s\n", rec)
		}
	}
	if a.ShowAlternatives && a.ProactiveAlternatives != nil && !a.ProactiveAlternatives.Empty() {
		var score *float64
		if a.Healthiness != nil {
			score = &a.Healthiness.Score
		}
		r.ProactiveAlternatives(food, score, *a.ProactiveAlternatives)
	}
}

func (r *Renderer) Healthiness(h model.Healthiness) {
	color := ScoreColor(h.Score)
	r.section("Healthiness Score")
	r.printf("%s / 100  %s\n", r.colored(color, number(h.Score)), r.colored(color, h.Category))

	b := h.Breakdown
	if b == nil {
		return
	}
	r.printf("  Base Score: %s\n", number(b.BaseScore))
	if len(b.Penalties) > 0 {
		r.printf("  Penalties:\n")
		for _, k := range sortedKeys(b.Penalties) {
			r.printf("    %s: -%.1f\n", k, b.Penalties[k].Penalty)
		}
	}
	if len(b.Bonuses) > 0 {
		r.printf("  Bonuses:\n")
		for _, k := range sortedKeys(b.Bonuses) {
			r.printf("    %s: +%.1f\n", k, b.Bonuses[k].Bonus)
		}
	}
	r.printf("  %s %s\n", r.label.Render("Final Score:"), number(b.FinalScore))
}

func (r *Renderer) Portion(p model.PortionEstimate) {
	r.section("Portion Estimate")
	r.field("Estimated Serving", p.EstimatedServing)
	if p.PortionMultiplier != 0 && p.PortionMultiplier != 1.0 {
		r.printf("%.1fx standard serving\n", p.PortionMultiplier)
	}
	if p.Note != "" {
		r.printf("%s\n", p.Note)
	}
	r.printf("%s\n", r.dim.Render("Confidence: "+p.Confidence))
}

func (r *Renderer) Nutrition(n model.Nutrition) {
	r.section("Nutrition Facts")
	if n.Serving != nil && n.Serving.Size != nil && *n.Serving.Size != 0 {
		r.field("Serving Size", fmt.Sprintf("%.0f %s", *n.Serving.Size, n.Serving.Unit))
	}
	rows := []struct {
		name   string
		amount *model.NutrientAmount
		format string
	}{
		{"Calories", n.Nutrients.Calories, "%.0f"},
		{"Protein", n.Nutrients.Protein, "%.1f"},
		{"Carbohydrates", n.Nutrients.Carbohydrates, "%.1f"},
		{"Fat", n.Nutrients.Fat, "%.1f"},
		{"Fiber", n.Nutrients.Fiber, "%.1f"},
		{"Sugar", n.Nutrients.Sugar, "%.1f"},
		{"Sodium", n.Nutrients.Sodium, "%.0f"},
	}
	r.printf("  %-16s %s\n", "Nutrient", "Amount")
	for _, row := range rows {
		if row.amount == nil || row.amount.Value == nil {
			continue
		}
		amount := fmt.Sprintf(row.format+" %s", *row.amount.Value, row.amount.Unit)
		if row.name == "Calories" {
			r.printf("  %-16s %s\n", r.bold.Render(row.name), r.bold.Render(amount))
			continue
		}
		r.printf("  %-16s %s\n", row.name, amount)
	}
}

// ProactiveAlternatives renders suggestions attached to a low-scoring result.
func (r *Renderer) ProactiveAlternatives(food string, score *float64, alts model.Alternatives) {
	r.section("Healthier Alternatives Available")
	if score != nil {
		label := AlternativesLabel(*score)
		r.printf("%s has a %s healthiness score (%.0f/100). Consider these alternatives:\n",
			food, r.colored(alternativesColor(label), strings.ToLower(label)), math.Round(*score))
	} else {
		r.printf("Consider these alternatives to %s:\n", food)
	}
	r.alternativeItems(alts)
	r.printf("%s\n", r.dim.Render(fmt.Sprintf("Run `foodlens alternatives %q` for more suggestions.", food)))
}

// Alternatives renders the response of the alternatives lookup.
func (r *Renderer) Alternatives(food string, alts model.Alternatives) {
	r.section("Alternatives to " + food)
	if alts.Empty() {
		r.printf("No alternatives found.\n")
		return
	}
	r.alternativeItems(alts)
}

func (r *Renderer) alternativeItems(alts model.Alternatives) {
	if len(alts.Items) == 0 {
		r.printf("%s\n", alts.Text)
		return
	}
	for _, alt := range alts.Items {
		r.printf("  %s\n", r.bold.Render(alt.Name))
		if alt.Explanation != "" {
			r.printf("    %s\n", alt.Explanation)
		}
		if alt.Benefit != "" {
			r.printf("    %s %s\n", r.colored(green, "✓"), alt.Benefit)
		}
	}
}

func alternativesColor(label string) lipgloss.Color {
	switch label {
	case "Low":
		return mealPoor
	case "Below Average":
		return mealFair
	default:
		return lipgloss.Color("#ffc107")
	}
}
