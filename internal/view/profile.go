package view

import (
	"fmt"
	"strings"

	"github.com/wisdomie/foodlens/internal/model"
)

func (r *Renderer) Profile(u model.User) {
	r.section("Your Profile")
	r.field("Username", u.Username)
	p := u.Profile
	if p == nil {
		r.printf("No profile set up yet.\n")
		r.printf("%s\n", r.dim.Render("Run `foodlens profile set` to add your goals and restrictions."))
		return
	}

	goals := make([]string, 0, len(p.HealthGoals))
	for _, g := range p.HealthGoals {
		goals = append(goals, humanize(string(g)))
	}
	r.field("Health Goals", listOr(goals, "No goals set"))

	restrictions := make([]string, 0, len(p.DietaryRestrictions))
	for _, d := range p.DietaryRestrictions {
		restrictions = append(restrictions, humanize(string(d)))
	}
	r.field("Dietary Restrictions", listOr(restrictions, "No restrictions"))
	r.field("Allergies", listOr(p.Allergies, "None"))
	if p.CalorieTarget != nil {
		r.field("Daily Calorie Target", fmt.Sprintf("%d cal", *p.CalorieTarget))
	}
}

func (r *Renderer) ProfileOptions(o model.ProfileOptions) {
	r.section("Health Goals")
	for _, g := range o.HealthGoals {
		r.printf("  %s\n", g)
	}
	r.section("Dietary Restrictions")
	for _, d := range o.DietaryRestrictions {
		r.printf("  %s\n", d)
	}
}

func listOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
