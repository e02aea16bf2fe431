package api

import (
	"context"
	"net/http"

	"github.com/wisdomie/foodlens/internal/model"
)

// Profile returns nil when the user has not set one up yet.
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var out struct {
		Profile *model.Profile `json:"profile"`
	}
	if err := c.get(ctx, "get profile", "/profile", &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

// UpdateProfile replaces the whole profile and returns the server's copy.
func (c *Client) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	var out struct {
		Profile *model.Profile `json:"profile"`
	}
	if err := c.send(ctx, "update profile", http.MethodPut, "/profile", p.Normalize(), &out); err != nil {
		return model.Profile{}, err
	}
	if err := requireField("update profile", "profile", out.Profile != nil); err != nil {
		return model.Profile{}, err
	}
	return *out.Profile, nil
}

func (c *Client) ProfileOptions(ctx context.Context) (model.ProfileOptions, error) {
	var out model.ProfileOptions
	if err := c.get(ctx, "profile options", "/profile/options", &out); err != nil {
		return model.ProfileOptions{}, err
	}
	return out, nil
}
