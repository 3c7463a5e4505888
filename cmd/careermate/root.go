package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AntonAveryan/careermate/backend"
	"github.com/AntonAveryan/careermate/chat"
	"github.com/AntonAveryan/careermate/favorites"
	"github.com/AntonAveryan/careermate/internal/config"
	"github.com/AntonAveryan/careermate/jobs"
	"github.com/AntonAveryan/careermate/localstore"
	"github.com/AntonAveryan/careermate/session"
)

// app holds the wired-up services shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	session   *session.Manager
	favorites *favorites.Synchronizer
	jobs      *jobs.Service
	chat      *chat.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:           "careermate",
		Short:         "Command-line client for the careermate career-coaching backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(configPath)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			figure.NewFigure("careermate", "cybermedium", true).Print()
			fmt.Println()
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newJobsCmd(a),
		newFavCmd(a),
		newChatCmd(a),
		newCVCmd(a),
	)
	return root
}

func (a *app) init(configPath string) error {
	// A .env next to the working directory mirrors the backend's own
	// development setup; missing is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	store, err := localstore.NewFileStore(cfg.StorePath())
	if err != nil {
		return err
	}
	api := backend.New(cfg.BaseURL,
		backend.WithTimeout(cfg.HTTPTimeout),
		backend.WithLogger(a.logger),
	)

	if a.session, err = session.New(store, api, session.WithLogger(a.logger)); err != nil {
		return err
	}
	index := favorites.NewIndex(store)
	if a.favorites, err = favorites.NewSynchronizer(index, a.session, api, favorites.WithLogger(a.logger)); err != nil {
		return err
	}
	if a.jobs, err = jobs.NewService(a.session, api, jobs.WithLogger(a.logger)); err != nil {
		return err
	}
	if a.chat, err = chat.NewService(a.session, api, chat.WithLogger(a.logger)); err != nil {
		return err
	}
	return nil
}
