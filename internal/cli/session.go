package cli

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/biblio/internal/engine"
	"github.com/mesh-intelligence/biblio/internal/local"
	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/internal/mode"
	"github.com/mesh-intelligence/biblio/internal/remote"
)

// session is an attached engine for the duration of one command.
type session struct {
	engine   *engine.Engine
	local    *local.Backend
	selector *mode.Selector
}

// open attaches the local store and, when useRemote is set and remote is
// enabled in the settings, probes the remote API once to pick the initial
// mode. The caller must call close.
func (a *app) open(ctx context.Context, useRemote bool, opts ...mode.Option) (*session, error) {
	store, err := local.OpenStore(a.settings.Config)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	backend := local.NewBackend(store, logging.For(logging.ComponentLocal))
	if err := backend.Attach(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("attach local store: %w", err)
	}

	s := &session{local: backend}
	engineOpts := []engine.Option{engine.WithLogger(logging.For(logging.ComponentEngine))}

	if useRemote && a.settings.Remote {
		client := remote.New(a.settings.APIBase,
			remote.WithTimeout(a.settings.RemoteTimeout),
			remote.WithLogger(logging.For(logging.ComponentRemote)),
		)
		opts = append([]mode.Option{
			mode.WithInterval(a.settings.ProbeInterval),
			mode.WithLogger(logging.For(logging.ComponentSelector)),
		}, opts...)
		s.selector = mode.New(client, opts...)
		// One check per command; only long-lived callers run the schedule.
		s.selector.Probe(ctx)
		engineOpts = append(engineOpts, engine.WithRemote(client, s.selector))
	}

	s.engine = engine.New(registry, backend, engineOpts...)
	a.log.Debugw("session opened", "mode", s.engine.Mode(), "data_dir", a.settings.DataDir)
	return s, nil
}

func (s *session) close() error {
	if s.selector != nil {
		s.selector.Stop()
	}
	return s.local.Detach()
}

// withSession opens a session, runs fn and closes the session.
func (a *app) withSession(ctx context.Context, fn func(*session) error) error {
	return a.session(ctx, true, fn)
}

// withLocalSession is withSession without the remote API.
func (a *app) withLocalSession(ctx context.Context, fn func(*session) error) error {
	return a.session(ctx, false, fn)
}

func (a *app) session(ctx context.Context, useRemote bool, fn func(*session) error) error {
	s, err := a.open(ctx, useRemote)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			a.log.Warnw("closing session", "error", cerr)
		}
	}()
	return fn(s)
}
