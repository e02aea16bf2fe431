package model

import "fmt"

type HealthGoal string

const (
	GoalLoseWeight     HealthGoal = "lose_weight"
	GoalGainWeight     HealthGoal = "gain_weight"
	GoalBuildMuscle    HealthGoal = "build_muscle"
	GoalEatHealthier   HealthGoal = "eat_healthier"
	GoalMoreEnergy     HealthGoal = "more_energy"
	GoalReduceSugar    HealthGoal = "reduce_sugar"
	GoalHeartHealth    HealthGoal = "heart_health"
	GoalManageDiabetes HealthGoal = "manage_diabetes"
)

var HealthGoals = []HealthGoal{
	GoalLoseWeight, GoalGainWeight, GoalBuildMuscle, GoalEatHealthier,
	GoalMoreEnergy, GoalReduceSugar, GoalHeartHealth, GoalManageDiabetes,
}

type DietaryRestriction string

const (
	RestrictionVegetarian  DietaryRestriction = "vegetarian"
	RestrictionVegan       DietaryRestriction = "vegan"
	RestrictionPescatarian DietaryRestriction = "pescatarian"
	RestrictionGlutenFree  DietaryRestriction = "gluten_free"
	RestrictionDairyFree   DietaryRestriction = "dairy_free"
	RestrictionNutFree     DietaryRestriction = "nut_free"
	RestrictionHalal       DietaryRestriction = "halal"
	RestrictionKosher      DietaryRestriction = "kosher"
	RestrictionLowSodium   DietaryRestriction = "low_sodium"
	RestrictionLowCarb     DietaryRestriction = "low_carb"
	RestrictionKeto        DietaryRestriction = "keto"
)

var DietaryRestrictions = []DietaryRestriction{
	RestrictionVegetarian, RestrictionVegan, RestrictionPescatarian, RestrictionGlutenFree,
	RestrictionDairyFree, RestrictionNutFree, RestrictionHalal, RestrictionKosher,
	RestrictionLowSodium, RestrictionLowCarb, RestrictionKeto,
}

type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Profile  *Profile `json:"profile,omitempty"`
}

// Profile is replaced as a whole on update; fields are never merged.
type Profile struct {
	HealthGoals         []HealthGoal         `json:"health_goals"`
	DietaryRestrictions []DietaryRestriction `json:"dietary_restrictions"`
	Allergies           []string             `json:"allergies"`
	CalorieTarget       *int                 `json:"calorie_target"`
}

type ProfileOptions struct {
	HealthGoals         []string `json:"health_goals"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

func ParseHealthGoal(s string) (HealthGoal, error) {
	for _, g := range HealthGoals {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown health goal %q", s)
}

func ParseDietaryRestriction(s string) (DietaryRestriction, error) {
	for _, r := range DietaryRestrictions {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown dietary restriction %q", s)
}

// Normalize collapses duplicate goals and restrictions, keeping first-seen
// order, and drops blank allergies. Nil slices become empty so the profile
// serializes as arrays.
func (p Profile) Normalize() Profile {
	out := Profile{
		HealthGoals:         make([]HealthGoal, 0, len(p.HealthGoals)),
		DietaryRestrictions: make([]DietaryRestriction, 0, len(p.DietaryRestrictions)),
		Allergies:           make([]string, 0, len(p.Allergies)),
		CalorieTarget:       p.CalorieTarget,
	}
	seenGoal := map[HealthGoal]bool{}
	for _, g := range p.HealthGoals {
		if !seenGoal[g] {
			seenGoal[g] = true
			out.HealthGoals = append(out.HealthGoals, g)
		}
	}
	seenRestriction := map[DietaryRestriction]bool{}
	for _, r := range p.DietaryRestrictions {
		if !seenRestriction[r] {
			seenRestriction[r] = true
			out.DietaryRestrictions = append(out.DietaryRestrictions, r)
		}
	}
	for _, a := range p.Allergies {
		if a != "" {
			out.Allergies = append(out.Allergies, a)
		}
	}
	return out
}
