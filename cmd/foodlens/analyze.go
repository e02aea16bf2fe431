package foodlens

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/imageprep"
	"github.com/wisdomie/foodlens/internal/model"
	"github.com/wisdomie/foodlens/internal/router"
	"github.com/wisdomie/foodlens/internal/store"
	"github.com/wisdomie/foodlens/internal/view"
)

var (
	analyzeLogMeal bool
	analyzeMaxDim  int
	analyzeLimit   int
)

var analyzeCmd = &cobra.Command{
	Use:         "analyze <image>",
	Short:       "Identify the food in a photo and show its nutrition analysis",
	Args:        cobra.ExactArgs(1),
	Annotations: routeAnnotation(router.Home),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			if analyzeLogMeal && !a.Session.IsAuthenticated() {
				return errNotSignedIn
			}
			img, err := imageprep.Load(args[0], analyzeMaxDim)
			if err != nil {
				return userError(err, "Failed to analyze image")
			}
			if img.Resized {
				a.Logger.Debug("image resized", slog.Int("width", img.Width), slog.Int("height", img.Height))
			}
			ctx := commandContext(cmd)
			result, raw, err := a.Client.Predict(ctx, img.Name, bytes.NewReader(img.Data))
			if err != nil {
				return userError(err, "Failed to analyze image")
			}

			id, err := store.SaveAnalysis(a.DB, store.AnalysisRecord{
				FoodName:      result.FoodName,
				Confidence:    result.Confidence,
				LowConfidence: result.LowConfidence(),
				ImageName:     filepath.Base(args[0]),
				ResultJSON:    string(raw),
			})
			if err != nil {
				a.Logger.Warn("record analysis", slog.String("error", err.Error()))
			}

			if jsonOutput {
				if err := jsonOut(cmd, result); err != nil {
					return err
				}
			} else {
				a.View.Prediction(result)
				if id > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "\nSaved as analysis #%d\n", id)
				}
			}

			if analyzeLogMeal {
				meal, err := a.Client.LogMeal(ctx, mealFromPrediction(result))
				if err != nil {
					return userError(err, "Failed to log meal")
				}
				if !jsonOutput {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged meal #%d (%s)\n", meal.ID, meal.FoodName)
				}
			}
			return nil
		})
	},
}

var analyzeHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List analyses stored on this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			records, err := store.ListAnalyses(sqldb, analyzeLimit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return jsonOut(cmd, records)
			}
			view.New(cmd.OutOrStdout()).AnalysisLog(records)
			return nil
		})
	},
}

var analyzeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored analysis again without contacting the service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("analysis id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			rec, err := store.GetAnalysis(sqldb, id)
			if err != nil {
				return err
			}
			result, err := api.DecodePrediction([]byte(rec.ResultJSON))
			if err != nil {
				return err
			}
			if jsonOutput {
				return jsonOut(cmd, result)
			}
			r := view.New(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Analysis #%d of %s at %s\n\n", rec.ID, rec.ImageName, rec.AnalyzedAt.Local().Format("2006-01-02 15:04"))
			r.Prediction(result)
			return nil
		})
	},
}

var alternativesCmd = &cobra.Command{
	Use:         "alternatives <food>",
	Short:       "Suggest healthier alternatives to a food",
	Args:        cobra.MinimumNArgs(1),
	Annotations: routeAnnotation(router.Home),
	RunE: func(cmd *cobra.Command, args []string) error {
		food := strings.TrimSpace(strings.Join(args, " "))
		if food == "" {
			return fmt.Errorf("food name is required")
		}
		return withApp(cmd, func(a *App) error {
			alts, err := a.Client.Alternatives(commandContext(cmd), food)
			if err != nil {
				return userError(err, "Failed to get alternatives")
			}
			if jsonOutput {
				return jsonOut(cmd, alts)
			}
			a.View.Alternatives(food, alts)
			if !a.Session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Login to get better recommendations.")
			}
			return nil
		})
	},
}

var healthCmd = &cobra.Command{
	Use:         "health",
	Short:       "Check that the service is up and the model is loaded",
	Args:        cobra.NoArgs,
	Annotations: routeAnnotation(router.Home),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			status, err := a.Client.Health(commandContext(cmd))
			if err != nil {
				return userError(err, "Health check failed")
			}
			if jsonOutput {
				return jsonOut(cmd, status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API: %s\nStatus: %s\nModel loaded: %t\n", a.Config.APIURL, status.Status, status.ModelLoaded)
			return nil
		})
	},
}

// mealFromPrediction builds the meal log entry for an analyzed photo. Low
// confidence results carry no nutrition and are logged by name only.
func mealFromPrediction(res model.PredictionResult) model.MealInput {
	in := model.MealInput{FoodName: res.FoodName}
	high, ok := res.High()
	if !ok {
		return in
	}
	if high.Healthiness != nil {
		score := high.Healthiness.Score
		in.HealthinessScore = &score
	}
	if high.Portion != nil && high.Portion.PortionMultiplier > 0 {
		portion := high.Portion.PortionMultiplier
		in.PortionSize = &portion
	}
	if high.Nutrition != nil {
		n := high.Nutrition.Nutrients
		in.Nutrition = &model.MealNutrition{
			Calories: amount(n.Calories),
			Protein:  amount(n.Protein),
			Carbs:    amount(n.Carbohydrates),
			Fat:      amount(n.Fat),
		}
	}
	return in
}

func amount(a *model.NutrientAmount) float64 {
	if a == nil || a.Value == nil {
		return 0
	}
	return *a.Value
}

func init() {
	rootCmd.AddCommand(analyzeCmd, alternativesCmd, healthCmd)
	analyzeCmd.AddCommand(analyzeHistoryCmd, analyzeShowCmd)

	analyzeCmd.Flags().BoolVar(&analyzeLogMeal, "log", false, "Also log the result as a meal (requires login)")
	analyzeCmd.Flags().IntVar(&analyzeMaxDim, "max-dimension", 1600, "Downscale photos whose longer edge exceeds this many pixels (0 keeps the original)")
	analyzeHistoryCmd.Flags().IntVar(&analyzeLimit, "limit", 20, "Maximum number of analyses to list")
	addJSONFlag(analyzeCmd, analyzeHistoryCmd, analyzeShowCmd, alternativesCmd, healthCmd)
}
