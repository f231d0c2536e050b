package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/powerdrillai/powerdrill-flow-sub000/adapter"
	adapterredis "github.com/powerdrillai/powerdrill-flow-sub000/adapter/redis"
	adapterwebhook "github.com/powerdrillai/powerdrill-flow-sub000/adapter/webhook"
	"github.com/powerdrillai/powerdrill-flow-sub000/api"
	"github.com/powerdrillai/powerdrill-flow-sub000/cli/config"
	"github.com/powerdrillai/powerdrill-flow-sub000/iox"
	"github.com/powerdrillai/powerdrill-flow-sub000/log"
	"github.com/powerdrillai/powerdrill-flow-sub000/runtime"
	"github.com/powerdrillai/powerdrill-flow-sub000/state"
)

// app bundles the wiring every command needs: config, logger, API client
// and the selection store.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	client *api.Client
	store  *state.Store

	logClose func()
}

// newApp loads configuration and constructs the shared dependencies.
// quiet suppresses stderr logging, for commands that own the terminal.
func newApp(c *cli.Context, quiet bool) (*app, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, logClose, err := newLogger(cfg, quiet)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.Key,
		UserID:  cfg.API.UserID,
		Timeout: cfg.API.Timeout.Duration,
		Logger:  logger,
	})
	if err != nil {
		logClose()
		return nil, err
	}

	statePath, err := state.DefaultPath()
	if err != nil {
		logClose()
		return nil, err
	}
	store, err := state.Open(statePath)
	if err != nil {
		logClose()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		store:    store,
		logClose: logClose,
	}, nil
}

// close flushes and releases app resources. Selection state is saved
// explicitly by the commands that change it.
func (a *app) close() {
	a.logClose()
}

// newLogger builds the logger per config: file sink when configured,
// stderr otherwise, discarded when quiet and no file is set.
func newLogger(cfg *config.Config, quiet bool) (*log.Logger, func(), error) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %q: %w", cfg.Log.File, err)
		}
		logger := log.NewLoggerTo("", f, cfg.Log.Level)
		return logger, iox.CloseFunc(f), nil
	}
	if quiet {
		return log.Nop(), func() {}, nil
	}
	return log.NewLoggerTo("", os.Stderr, cfg.Log.Level), func() {}, nil
}

// newAdapter builds the configured turn notification adapter, or nil
// when none is configured.
func (a *app) newAdapter() (adapter.Adapter, error) {
	ac := a.cfg.Adapter
	switch ac.Type {
	case "":
		return nil, nil
	case "webhook":
		retries := adapterwebhook.DefaultRetries
		if ac.Retries != nil {
			retries = *ac.Retries
		}
		return adapterwebhook.New(adapterwebhook.Config{
			URL:     ac.URL,
			Headers: ac.Headers,
			Timeout: ac.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		retries := adapterredis.DefaultRetries
		if ac.Retries != nil {
			retries = *ac.Retries
		}
		return adapterredis.New(adapterredis.Config{
			URL:     ac.URL,
			Channel: ac.Channel,
			Timeout: ac.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", ac.Type)
	}
}

// resolveSession picks the conversation to use: the --session flag, then
// the last active session, then a newly created one. The chosen id is
// recorded as active.
func (a *app) resolveSession(c *cli.Context) (string, error) {
	sessionID := c.String("session")
	if sessionID == "" {
		sessionID = a.store.ActiveSessionID()
	}
	if sessionID == "" {
		var err error
		sessionID, err = a.client.CreateSession(c.Context, api.CreateSessionRequest{
			Name:           a.cfg.Session.Name,
			OutputLanguage: a.cfg.Session.OutputLanguage,
			JobMode:        a.cfg.Session.JobMode,
		})
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		a.logger.Info("session created", map[string]any{"session_id": sessionID})
	}

	a.store.SetActiveSession(sessionID)
	return sessionID, nil
}

// sessionContext assembles the question scope from flags and the pinned
// selection, persisting any flag overrides.
func (a *app) sessionContext(c *cli.Context, sessionID string) runtime.SessionContext {
	sel, _ := a.store.Selection(sessionID)

	if ds := c.String("dataset"); ds != "" {
		sel.DatasetID = ds
		sel.DatasourceIDs = nil
	}
	if srcs := c.StringSlice("datasource"); len(srcs) > 0 {
		sel.DatasourceIDs = srcs
	}
	a.store.SetSelection(sessionID, sel)

	return runtime.SessionContext{
		SessionID:     sessionID,
		DatasetID:     sel.DatasetID,
		DatasourceIDs: sel.DatasourceIDs,
	}
}

// saveState persists the selection store, logging rather than failing on
// error: losing a selection must not fail the command that answered.
func (a *app) saveState() {
	if err := a.store.Save(); err != nil {
		a.logger.Warn("saving selection state failed", map[string]any{"error": err.Error()})
	}
}

// printErr writes a short failure line to stderr.
func printErr(w io.Writer, n runtime.Notice) {
	fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
}
