package model

type MealNutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type Meal struct {
	ID               int64          `json:"id"`
	FoodName         string         `json:"food_name"`
	LoggedAt         *Timestamp     `json:"logged_at,omitempty"`
	Nutrition        *MealNutrition `json:"nutrition,omitempty"`
	HealthinessScore *float64       `json:"healthiness_score,omitempty"`
}

type MealInput struct {
	FoodName         string         `json:"food_name"`
	Nutrition        *MealNutrition `json:"nutrition,omitempty"`
	HealthinessScore *float64       `json:"healthiness_score,omitempty"`
	PortionSize      *float64       `json:"portion_size,omitempty"`
}

type DayTotals struct {
	Calories           float64 `json:"calories"`
	Protein            float64 `json:"protein"`
	Carbs              float64 `json:"carbs"`
	Fat                float64 `json:"fat"`
	AverageHealthiness float64 `json:"average_healthiness"`
}

type TodayMeals struct {
	Meals  []Meal    `json:"meals"`
	Totals DayTotals `json:"totals"`
}

type DailyStat struct {
	Date      string  `json:"date"`
	Calories  float64 `json:"calories"`
	MealCount int     `json:"meal_count"`
}

type StatAverages struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type MealStats struct {
	Period        string       `json:"period"`
	Averages      StatAverages `json:"averages"`
	DailyData     []DailyStat  `json:"daily_data"`
	TotalMeals    int          `json:"total_meals"`
	DaysWithMeals int          `json:"days_with_meals"`
}

type FrequentFood struct {
	FoodName string `json:"food_name"`
	Count    int    `json:"count"`
}
