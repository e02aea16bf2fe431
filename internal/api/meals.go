package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wisdomie/foodlens/internal/model"
)

func (c *Client) TodayMeals(ctx context.Context) (model.TodayMeals, error) {
	var out model.TodayMeals
	if err := c.get(ctx, "today's meals", "/meals/today", &out); err != nil {
		return model.TodayMeals{}, err
	}
	return out, nil
}

// MealStats fetches "daily" or "weekly" statistics. date (YYYY-MM-DD) only
// matters for daily stats and is omitted when empty.
func (c *Client) MealStats(ctx context.Context, period, date string) (model.MealStats, error) {
	if period == "" {
		period = "weekly"
	}
	q := url.Values{"period": {period}}
	if date != "" {
		q.Set("date", date)
	}
	var out struct {
		Stats model.MealStats `json:"stats"`
	}
	if err := c.get(ctx, "meal stats", "/meals/stats?"+q.Encode(), &out); err != nil {
		return model.MealStats{}, err
	}
	return out.Stats, nil
}

func (c *Client) Meals(ctx context.Context, days int, food string) ([]model.Meal, error) {
	if days <= 0 {
		days = 7
	}
	q := url.Values{"days": {strconv.Itoa(days)}}
	if food != "" {
		q.Set("food", food)
	}
	var out struct {
		Meals []model.Meal `json:"meals"`
	}
	if err := c.get(ctx, "meals", "/meals?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Meals, nil
}

func (c *Client) LogMeal(ctx context.Context, in model.MealInput) (model.Meal, error) {
	var out struct {
		Meal model.Meal `json:"meal"`
	}
	if err := c.send(ctx, "log meal", http.MethodPost, "/meals", in, &out); err != nil {
		return model.Meal{}, err
	}
	return out.Meal, nil
}

func (c *Client) FrequentFoods(ctx context.Context, days int) ([]model.FrequentFood, error) {
	if days <= 0 {
		days = 30
	}
	var out struct {
		Foods []model.FrequentFood `json:"foods"`
	}
	if err := c.get(ctx, "frequent foods", "/meals/frequent?days="+strconv.Itoa(days), &out); err != nil {
		return nil, err
	}
	return out.Foods, nil
}
