package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wisdomie/foodlens/internal/model"
)

const (
	barWidth       = 30
	minBarCalories = 2000
)

func (r *Renderer) TodayMeals(t model.TodayMeals) {
	r.section("Today's Summary")
	r.printf("  Calories %.0f   Protein %.0fg   Carbs %.0fg   Fat %.0fg\n",
		math.Round(t.Totals.Calories), math.Round(t.Totals.Protein),
		math.Round(t.Totals.Carbs), math.Round(t.Totals.Fat))
	if avg := t.Totals.AverageHealthiness; avg > 0 {
		r.printf("  Average Healthiness: %s\n", r.colored(MealColor(avg), number(avg)+"/100"))
	}

	r.section(fmt.Sprintf("Today's Meals (%d)", len(t.Meals)))
	if len(t.Meals) == 0 {
		r.printf("No meals logged today\n")
		return
	}
	r.mealRows(t.Meals, "15:04")
}

// Meals lists meals across days, newest first as the server returns them.
func (r *Renderer) Meals(meals []model.Meal) {
	if len(meals) == 0 {
		r.printf("No meals found\n")
		return
	}
	r.mealRows(meals, "2006-01-02 15:04")
}

func (r *Renderer) mealRows(meals []model.Meal, layout string) {
	for _, m := range meals {
		when := ""
		if m.LoggedAt != nil {
			when = m.LoggedAt.Local().Format(layout)
		}
		cal := ""
		if m.Nutrition != nil {
			cal = fmt.Sprintf("%.0f cal", math.Round(m.Nutrition.Calories))
		}
		score := ""
		if m.HealthinessScore != nil && *m.HealthinessScore != 0 {
			score = r.colored(MealColor(*m.HealthinessScore), fmt.Sprintf("%.0f", math.Round(*m.HealthinessScore)))
		}
		r.printf("  %-5d %-24s %-16s %-9s %s\n", m.ID, m.FoodName, when, cal, score)
	}
}

func (r *Renderer) WeeklyStats(s model.MealStats) {
	r.section("Weekly Averages")
	r.printf("  Avg Calories/Day %.0f   Avg Protein %.0fg   Total Meals %d   Days Tracked %d/7\n",
		math.Round(s.Averages.Calories), math.Round(s.Averages.Protein), s.TotalMeals, s.DaysWithMeals)

	if len(s.DailyData) == 0 {
		return
	}
	r.section("Daily Breakdown")
	maxCalories := float64(minBarCalories)
	for _, d := range s.DailyData {
		maxCalories = math.Max(maxCalories, d.Calories)
	}
	for _, d := range s.DailyData {
		width := int(math.Round(d.Calories / maxCalories * barWidth))
		if width < 1 {
			width = 1
		}
		color := barIdle
		if d.MealCount > 0 {
			color = barActive
		}
		r.printf("  %-3s %s %.0f\n", weekday(d.Date), r.colored(color, strings.Repeat("█", width)), math.Round(d.Calories))
	}
}

func weekday(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon")
}

func (r *Renderer) FrequentFoods(foods []model.FrequentFood) {
	if len(foods) == 0 {
		r.printf("No meals found\n")
		return
	}
	r.printf("%-28s %s\n", "FOOD", "COUNT")
	for _, f := range foods {
		r.printf("%-28s %d\n", f.FoodName, f.Count)
	}
}
