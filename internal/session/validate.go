package session

import (
	"strings"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/model"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

func ValidateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &api.ValidationError{Message: "Username is required"}
	}
	if password == "" {
		return &api.ValidationError{Message: "Password is required"}
	}
	return nil
}

func ValidateRegistration(username, password, confirm string) error {
	if strings.TrimSpace(username) == "" {
		return &api.ValidationError{Message: "Username is required"}
	}
	if len(username) < minUsernameLen {
		return &api.ValidationError{Message: "Username must be at least 3 characters"}
	}
	if password == "" {
		return &api.ValidationError{Message: "Password is required"}
	}
	if len(password) < minPasswordLen {
		return &api.ValidationError{Message: "Password must be at least 6 characters"}
	}
	if password != confirm {
		return &api.ValidationError{Message: "Passwords do not match"}
	}
	return nil
}

const (
	minCalorieTarget = 1000
	maxCalorieTarget = 5000
)

// ValidateProfile applies the form limits: calorie target, when set, within
// 1000-5000.
func ValidateProfile(p model.Profile) error {
	if t := p.CalorieTarget; t != nil && (*t < minCalorieTarget || *t > maxCalorieTarget) {
		return &api.ValidationError{Message: "Calorie target must be between 1000 and 5000"}
	}
	return nil
}
