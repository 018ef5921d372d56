package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"SceneBoard/internal/config"
)

type globalFlags struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "sceneboard",
		Short:         "A small vector scene editor with LAN sharing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			if g.logLevel != "" {
				cfg.Log.Level = g.logLevel
			}
			level, err := log.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			g.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(g, "", false)
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newEditCmd(g),
		newServeCmd(g),
		newViewCmd(g),
		newDiscoverCmd(g),
		newExportCmd(g),
		newConfigCmd(g),
	)
	return root
}

func main() {
	formatter := &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	}
	log.SetFormatter(formatter)
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
