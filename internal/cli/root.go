// Package cli contains the CLI setup and commands exposed to the user
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shaban/avfaudio"
	"github.com/shaban/avfaudio/config"
	"github.com/shaban/avfaudio/session"
)

type app struct {
	v          *viper.Viper
	configFile string
	session    func() *session.Session
	logger     zerolog.Logger
}

// Option customizes the root command.
type Option func(*app)

// WithSession makes every command drive s instead of the shared instance.
func WithSession(s *session.Session) Option {
	return func(a *app) { a.session = func() *session.Session { return s } }
}

// NewRootCommand builds the avfaudio command tree with its own viper instance.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		v:       viper.New(),
		session: session.SharedInstance,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:          "avfaudio",
		Short:        "Inspect and configure the AVAudioSession",
		SilenceUsage: true,
		// loading config after flag parsing lets --config point elsewhere
		PersistentPreRunE: a.initConfig,
	}

	defaultConfigFile, err := config.Path()
	if err != nil {
		defaultConfigFile = config.FileName
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", defaultConfigFile, "config file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("strict", false, "reject combinations the platform does not document")
	bindFlags(a.v, root.PersistentFlags(), map[string]string{
		"log-level": "log-level",
		"strict":    "strict",
	})

	root.AddCommand(
		a.categoriesCmd(),
		a.optionsCmd(),
		a.modesCmd(),
		a.checkCmd(),
		a.applyCmd(),
		a.activateCmd(),
		a.deactivateCmd(),
		a.statusCmd(),
		a.pickCmd(),
		a.watchCmd(),
		a.configCmd(),
	)
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// bindFlags exposes flags to the application via viper, keyed by viper key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.Init(a.v, a.configFile); err != nil {
		return err
	}
	logger, err := avfaudio.NewLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"), true)
	if err != nil {
		return err
	}
	a.logger = logger
	log.Logger = logger
	a.logger.Debug().Str("file", a.configFile).Msg("using config file")
	return nil
}

func (a *app) settings() (config.Settings, error) {
	return config.Decode(a.v)
}

// controller returns a controller that leaves the session active on exit,
// so `avfaudio activate` outlives its own process.
func (a *app) controller(s config.Settings) (*avfaudio.Controller, error) {
	return avfaudio.NewController(avfaudio.ControllerConfig{
		Session:    a.session(),
		Logger:     &a.logger,
		Strict:     s.Strict,
		KeepActive: true,
	})
}
