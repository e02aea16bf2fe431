package foodlens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/app"
	"github.com/wisdomie/foodlens/internal/chat"
	"github.com/wisdomie/foodlens/internal/config"
	"github.com/wisdomie/foodlens/internal/db"
	"github.com/wisdomie/foodlens/internal/router"
	"github.com/wisdomie/foodlens/internal/session"
	"github.com/wisdomie/foodlens/internal/store"
	"github.com/wisdomie/foodlens/internal/view"
)

var errNotSignedIn = errors.New("not signed in: run `foodlens login` first")

// App is everything a routed command needs for one invocation.
type App struct {
	DB      *sql.DB
	Config  config.Config
	Logger  *slog.Logger
	Client  *api.Client
	Session *session.Manager
	View    *view.Renderer
}

func (a *App) ChatManager() *chat.Manager {
	return chat.NewManager(a.Client,
		chat.WithActiveStore(store.NewChatState(a.DB)),
		chat.WithLogger(a.Logger.With(slog.String("component", "chat"))),
	)
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withApp wires storage, config, the API client and the session, then gates
// the command on its route before calling run.
func withApp(cmd *cobra.Command, run func(*App) error) error {
	return withDB(func(sqldb *sql.DB) error {
		if err := config.LoadDotEnv(""); err != nil {
			return err
		}
		stored, err := store.ListConfig(sqldb)
		if err != nil {
			return err
		}
		cfg, err := config.Resolve(config.Flags{APIURL: apiURLFlag, Verbose: verbose}, stored, os.Getenv)
		if err != nil {
			return err
		}
		logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

		tokens := store.NewTokens(sqldb)
		client := api.NewClient(cfg.APIURL, tokens, logger)
		client.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
		sess := session.NewManager(client, tokens, logger)
		sess.Attach(client)

		a := &App{
			DB:      sqldb,
			Config:  cfg,
			Logger:  logger,
			Client:  client,
			Session: sess,
			View:    view.New(cmd.OutOrStdout()),
		}

		route, err := commandRoute(cmd)
		if err != nil {
			return err
		}
		resumeErr := sess.Resume(commandContext(cmd))

		switch router.Decide(route, sess.Guard()) {
		case router.RedirectToLogin:
			if resumeErr != nil && api.IsTransport(resumeErr) {
				return errors.New(api.ConnectMessage)
			}
			return errNotSignedIn
		case router.RedirectHome:
			fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s\n", sess.Snapshot().User.Username)
			return nil
		case router.Placeholder:
			return fmt.Errorf("session is still being restored")
		}
		return run(a)
	})
}

// commandRoute reads the route annotation from cmd or its nearest parent.
func commandRoute(cmd *cobra.Command) (router.Route, error) {
	for c := cmd; c != nil; c = c.Parent() {
		if r, ok := c.Annotations[router.Annotation]; ok {
			return router.Parse(r)
		}
	}
	return router.Home, nil
}

func routeAnnotation(r router.Route) map[string]string {
	return map[string]string{router.Annotation: string(r)}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}
