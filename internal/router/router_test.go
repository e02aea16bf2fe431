package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomie/foodlens/internal/session"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		route Route
		guard session.GuardState
		want  Decision
	}{
		{Chat, session.Resolving, Placeholder},
		{Login, session.Resolving, Render},
		{Home, session.Resolving, Render},
		{Chat, session.Unauthenticated, RedirectToLogin},
		{History, session.Unauthenticated, RedirectToLogin},
		{Profile, session.Unauthenticated, RedirectToLogin},
		{Home, session.Unauthenticated, Render},
		{Chat, session.Authenticated, Render},
		{Home, session.Authenticated, Render},
		{Login, session.Unauthenticated, Render},
		{Login, session.Authenticated, RedirectHome},
	}
	for _, tc := range cases {
		t.Run(string(tc.route)+"/"+tc.guard.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.route, tc.guard))
		})
	}
}

func TestParse(t *testing.T) {
	r, err := Parse("/history")
	require.NoError(t, err)
	assert.Equal(t, History, r)
	assert.True(t, r.Protected())

	r, err = Parse("/")
	require.NoError(t, err)
	assert.Equal(t, Home, r)
	assert.False(t, r.Protected())

	r, err = Parse("/login")
	require.NoError(t, err)
	assert.Equal(t, Login, r)

	_, err = Parse("/admin")
	assert.Error(t, err)

	assert.Len(t, Routes(), 5)
	assert.Equal(t, Home, AfterLogin())
}
