package main

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/OjusAnilNaik/To-do-List/board"
	"github.com/OjusAnilNaik/To-do-List/localstore"
	"github.com/OjusAnilNaik/To-do-List/remote"
)

// app carries the resolved config and the backend opened for one command.
type app struct {
	cfgFile string
	flags   config
	cfg     config
	logger  *log.Logger

	manager *board.Manager
	prefs   *localstore.Preferences
	client  *remote.Client
	closers []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{logger: log.New()}
	a.logger.SetOutput(os.Stderr)
	a.logger.SetLevel(log.WarnLevel)
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		a.logger.SetLevel(log.DebugLevel)
	}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "Keep a to-do list in a local file, in redis or on the to-do API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(a.cfgFile, cmd.Flags(), a.flags)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger.Debugf("store: %s", cfg.Store)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file (default $XDG_CONFIG_HOME/todo/config.yaml)")
	flags.StringVar(&a.flags.Store, "store", "", "backend: file, redis or remote")
	flags.StringVar(&a.flags.File, "file", "", "notes file for the file store")
	flags.StringVar(&a.flags.Redis, "redis", "", "redis URL or address for the redis store")
	flags.StringVar(&a.flags.API, "api", "", "base URL of the to-do API")
	flags.StringVar(&a.flags.Token, "token", "", "bearer token for the to-do API")
	flags.DurationVar(&a.flags.Timeout, "timeout", 0, "API request timeout")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newPinCmd(a),
		newEditCmd(a),
		newColorCmd(a),
		newRemoveCmd(a),
		newClearCmd(a),
		newClearCompletedCmd(a),
		newReorderCmd(a),
		newTagCmd(a),
		newDueCmd(a),
		newDetailsCmd(a),
		newStatsCmd(a),
		newThemeCmd(a),
		newEmojiCmd(),
	)
	return root
}

// open connects to the configured backend and loads the list.
func (a *app) open(ctx context.Context) (*board.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	var store board.Store
	switch a.cfg.Store {
	case storeRemote:
		a.client = remote.New(a.cfg.API, a.cfg.Token, a.cfg.Timeout)
		store = remote.NewStore(a.client)
		// Preferences stay on this machine.
		kv, err := localstore.NewFileKV(a.cfg.File)
		if err != nil {
			return nil, err
		}
		a.prefs = localstore.NewPreferences(kv)
	default:
		kv, err := a.openKV()
		if err != nil {
			return nil, err
		}
		store = localstore.NewNoteStore(kv)
		a.prefs = localstore.NewPreferences(kv)
	}

	m := board.New(store, board.WithLogger(a.logger))
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	a.manager = m
	return m, nil
}

func (a *app) openKV() (localstore.KV, error) {
	if a.cfg.Store != storeRedis {
		return localstore.NewFileKV(a.cfg.File)
	}
	opts, err := redis.ParseURL(a.cfg.Redis)
	if err != nil {
		opts = &redis.Options{Addr: a.cfg.Redis}
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, client.Close)
	return localstore.NewRedisKV(client, a.cfg.Namespace), nil
}

// preferences opens only what theme commands need.
func (a *app) preferences() (*localstore.Preferences, error) {
	if a.prefs != nil {
		return a.prefs, nil
	}
	var kv localstore.KV
	var err error
	if a.cfg.Store == storeRemote {
		kv, err = localstore.NewFileKV(a.cfg.File)
	} else {
		kv, err = a.openKV()
	}
	if err != nil {
		return nil, err
	}
	a.prefs = localstore.NewPreferences(kv)
	return a.prefs, nil
}

func (a *app) close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	a.manager, a.prefs, a.client = nil, nil, nil
	return first
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
