package foodlens

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wisdomie/foodlens/internal/model"
	"github.com/wisdomie/foodlens/internal/router"
)

const historyFailed = "Failed to load meal history"

var (
	historyMealDays int
	historyFreqDays int
	historyFood     string
	historyDate     string
	mealLogFood     string
	mealLogCalories float64
	mealLogProtein  float64
	mealLogCarbs    float64
	mealLogFat      float64
	mealLogScore    float64
)

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "Show today's meals and the weekly overview",
	Args:        cobra.NoArgs,
	Annotations: routeAnnotation(router.History),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			var (
				today model.TodayMeals
				stats model.MealStats
			)
			g, ctx := errgroup.WithContext(commandContext(cmd))
			g.Go(func() error {
				var err error
				today, err = a.Client.TodayMeals(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				stats, err = a.Client.MealStats(ctx, "weekly", "")
				return err
			})
			if err := g.Wait(); err != nil {
				a.Logger.Warn("load meal history", slog.String("error", err.Error()))
				return userError(err, historyFailed)
			}

			if jsonOutput {
				return jsonOut(cmd, map[string]any{"today": today, "weekly": stats})
			}
			a.View.TodayMeals(today)
			fmt.Fprintln(cmd.OutOrStdout())
			a.View.WeeklyStats(stats)
			return nil
		})
	},
}

var historyTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show meals logged today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			today, err := a.Client.TodayMeals(commandContext(cmd))
			if err != nil {
				return userError(err, historyFailed)
			}
			if jsonOutput {
				return jsonOut(cmd, today)
			}
			a.View.TodayMeals(today)
			return nil
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats [daily|weekly]",
	Short: "Show calorie statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period := "weekly"
		if len(args) == 1 {
			period = strings.ToLower(strings.TrimSpace(args[0]))
		}
		if period != "daily" && period != "weekly" {
			return fmt.Errorf("period must be daily or weekly")
		}
		return withApp(cmd, func(a *App) error {
			stats, err := a.Client.MealStats(commandContext(cmd), period, historyDate)
			if err != nil {
				return userError(err, historyFailed)
			}
			if jsonOutput {
				return jsonOut(cmd, stats)
			}
			a.View.WeeklyStats(stats)
			return nil
		})
	},
}

var historyMealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "List meals from the last few days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			meals, err := a.Client.Meals(commandContext(cmd), historyMealDays, strings.TrimSpace(historyFood))
			if err != nil {
				return userError(err, historyFailed)
			}
			if jsonOutput {
				return jsonOut(cmd, meals)
			}
			a.View.Meals(meals)
			return nil
		})
	},
}

var historyFrequentCmd = &cobra.Command{
	Use:   "frequent",
	Short: "Show the foods you log most often",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			foods, err := a.Client.FrequentFoods(commandContext(cmd), historyFreqDays)
			if err != nil {
				return userError(err, historyFailed)
			}
			if jsonOutput {
				return jsonOut(cmd, foods)
			}
			a.View.FrequentFoods(foods)
			return nil
		})
	},
}

var historyLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a meal by hand",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		food := strings.TrimSpace(mealLogFood)
		if food == "" {
			return fmt.Errorf("--food is required")
		}
		in := model.MealInput{FoodName: food}
		f := cmd.Flags()
		if f.Changed("calories") || f.Changed("protein") || f.Changed("carbs") || f.Changed("fat") {
			in.Nutrition = &model.MealNutrition{
				Calories: mealLogCalories,
				Protein:  mealLogProtein,
				Carbs:    mealLogCarbs,
				Fat:      mealLogFat,
			}
		}
		if f.Changed("score") {
			if mealLogScore < 0 || mealLogScore > 100 {
				return fmt.Errorf("--score must be between 0 and 100")
			}
			score := mealLogScore
			in.HealthinessScore = &score
		}
		return withApp(cmd, func(a *App) error {
			meal, err := a.Client.LogMeal(commandContext(cmd), in)
			if err != nil {
				return userError(err, "Failed to log meal")
			}
			if jsonOutput {
				return jsonOut(cmd, meal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged meal #%d (%s)\n", meal.ID, meal.FoodName)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyTodayCmd, historyStatsCmd, historyMealsCmd, historyFrequentCmd, historyLogCmd)

	historyStatsCmd.Flags().StringVar(&historyDate, "date", "", "Day for daily stats (YYYY-MM-DD)")
	historyMealsCmd.Flags().IntVar(&historyMealDays, "days", 7, "Number of days to include")
	historyMealsCmd.Flags().StringVar(&historyFood, "food", "", "Only meals whose name contains this text")
	historyFrequentCmd.Flags().IntVar(&historyFreqDays, "days", 30, "Number of days to include")

	historyLogCmd.Flags().StringVar(&mealLogFood, "food", "", "Food name")
	historyLogCmd.Flags().Float64Var(&mealLogCalories, "calories", 0, "Calories")
	historyLogCmd.Flags().Float64Var(&mealLogProtein, "protein", 0, "Protein (g)")
	historyLogCmd.Flags().Float64Var(&mealLogCarbs, "carbs", 0, "Carbohydrates (g)")
	historyLogCmd.Flags().Float64Var(&mealLogFat, "fat", 0, "Fat (g)")
	historyLogCmd.Flags().Float64Var(&mealLogScore, "score", 0, "Healthiness score (0-100)")

	addJSONFlag(historyCmd, historyTodayCmd, historyStatsCmd, historyMealsCmd, historyFrequentCmd, historyLogCmd)
}
