package cmds

import (
	"github.com/go-go-golems/concierge/pkg/config"
	"github.com/go-go-golems/concierge/pkg/logging"
	"github.com/spf13/cobra"
)

// App carries the resolved configuration to the subcommands.
type App struct {
	Config config.Config
}

func NewRootCommand() *cobra.Command {
	app := &App{Config: config.Default()}

	root := &cobra.Command{
		Use:           "concierge",
		Short:         "concierge is the agency's conversational assistant in a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			ls := app.Config.Logging
			// log lines would corrupt the TUI screen
			ls.Discard = cmd.Name() == "chat"
			return logging.Init(ls)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default $XDG_CONFIG_HOME/concierge/config.yaml)")
	pf.String("env-file", ".env", "dotenv file loaded before reading CONCIERGE_* variables")
	pf.String("log-level", "", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "", "log format (auto, console, json)")
	pf.String("log-file", "", "write logs to this file, rotated")
	pf.Bool("with-caller", false, "add caller information to log lines")
	pf.String("endpoint", "", "streaming chat endpoint")
	pf.String("transport", "", "transport kind (sse, websocket)")
	pf.String("language", "", "interface language (en, es); defaults to LANG")
	pf.String("page-url", "", "page URL forwarded with every request")
	pf.Int("input-limit", 0, "composer character cap")
	pf.String("store", "", "session store backend (file, sqlite, redis, memory)")
	pf.String("store-path", "", "session store file for the file and sqlite backends")
	pf.String("store-redis-addr", "", "redis address for the redis session store")
	pf.Bool("events-redis", false, "publish conversation events on redis streams")
	pf.String("events-redis-addr", "", "redis address for the event bus")

	root.AddCommand(
		NewChatCommand(app),
		NewSessionCommand(app),
		NewRenderCommand(app),
		NewServeStubCommand(app),
	)
	return root
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"log-level":         "logging.level",
	"log-format":        "logging.format",
	"log-file":          "logging.file",
	"with-caller":       "logging.with-caller",
	"endpoint":          "endpoint",
	"transport":         "transport",
	"language":          "language",
	"page-url":          "page-url",
	"input-limit":       "input-limit",
	"store":             "store.backend",
	"store-path":        "store.path",
	"store-redis-addr":  "store.redis-addr",
	"events-redis":      "events.redis-enabled",
	"events-redis-addr": "events.redis-addr",
}

// load resolves, lowest first: defaults, the YAML file, CONCIERGE_* variables
// (seeded from the .env file) and explicitly set flags.
func (a *App) load(cmd *cobra.Command) error {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
	}

	path, _ := flags.GetString("config")
	required := path != ""
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}

	v, err := config.NewViper()
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, flags, flagKeys); err != nil {
		return err
	}
	cfg, err := config.Load(v, path, required)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.Config = cfg
	return nil
}
