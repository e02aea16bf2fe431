package foodlens

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wisdomie/foodlens/internal/model"
	"github.com/wisdomie/foodlens/internal/router"
	"github.com/wisdomie/foodlens/internal/session"
)

var profileCmd = &cobra.Command{
	Use:         "profile",
	Short:       "Show or edit your dietary profile",
	Annotations: routeAnnotation(router.Profile),
}

var (
	profileGoals        []string
	profileRestrictions []string
	profileAllergies    []string
	profileCalories     int
	profileNoCalories   bool
)

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			user := a.Session.Snapshot().User
			if jsonOutput {
				return jsonOut(cmd, user.Profile)
			}
			a.View.Profile(*user)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update goals, restrictions, allergies or calorie target",
	Long:  "Flags that are not given keep their current value. The whole profile is sent on every update.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			var p model.Profile
			if current := a.Session.Snapshot().User.Profile; current != nil {
				p = *current
			}
			updates, err := applyProfileFlags(cmd, &p)
			if err != nil {
				return err
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			if err := session.ValidateProfile(p); err != nil {
				return err
			}
			saved, err := a.Session.UpdateProfile(commandContext(cmd), p)
			if err != nil {
				return userError(err, "Failed to save profile")
			}
			if jsonOutput {
				return jsonOut(cmd, saved)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile saved")
			a.View.Profile(*a.Session.Snapshot().User)
			return nil
		})
	},
}

var profileOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the health goals and dietary restrictions the service accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			opts, err := a.Client.ProfileOptions(commandContext(cmd))
			if err != nil {
				return userError(err, "Failed to load profile options")
			}
			if jsonOutput {
				return jsonOut(cmd, opts)
			}
			a.View.ProfileOptions(opts)
			return nil
		})
	},
}

func applyProfileFlags(cmd *cobra.Command, p *model.Profile) (int, error) {
	updates := 0
	flags := cmd.Flags()
	if flags.Changed("goal") {
		goals := make([]model.HealthGoal, 0, len(profileGoals))
		for _, g := range profileGoals {
			goal, err := model.ParseHealthGoal(g)
			if err != nil {
				return 0, err
			}
			goals = append(goals, goal)
		}
		p.HealthGoals = goals
		updates++
	}
	if flags.Changed("restriction") {
		restrictions := make([]model.DietaryRestriction, 0, len(profileRestrictions))
		for _, r := range profileRestrictions {
			restriction, err := model.ParseDietaryRestriction(r)
			if err != nil {
				return 0, err
			}
			restrictions = append(restrictions, restriction)
		}
		p.DietaryRestrictions = restrictions
		updates++
	}
	if flags.Changed("allergy") {
		p.Allergies = append([]string(nil), profileAllergies...)
		updates++
	}
	if flags.Changed("calorie-target") && flags.Changed("no-calorie-target") {
		return 0, fmt.Errorf("--calorie-target and --no-calorie-target are mutually exclusive")
	}
	if flags.Changed("calorie-target") {
		target := profileCalories
		p.CalorieTarget = &target
		updates++
	}
	if profileNoCalories {
		p.CalorieTarget = nil
		updates++
	}
	return updates, nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileOptionsCmd)

	profileSetCmd.Flags().StringSliceVar(&profileGoals, "goal", nil, "Health goal (repeatable or comma-separated; empty clears)")
	profileSetCmd.Flags().StringSliceVar(&profileRestrictions, "restriction", nil, "Dietary restriction (repeatable or comma-separated; empty clears)")
	profileSetCmd.Flags().StringSliceVar(&profileAllergies, "allergy", nil, "Food allergy (repeatable or comma-separated; empty clears)")
	profileSetCmd.Flags().IntVar(&profileCalories, "calorie-target", 0, "Daily calorie target (1000-5000)")
	profileSetCmd.Flags().BoolVar(&profileNoCalories, "no-calorie-target", false, "Remove the daily calorie target")
	addJSONFlag(profileShowCmd, profileSetCmd, profileOptionsCmd)
}
