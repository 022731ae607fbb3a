package cmd

import (
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/c9s/pythia/pkg/cmd/cmdutil"
)

var RootCmd = &cobra.Command{
	Use:   "pythia",
	Short: "pythia ranks stock tickers by their distance from the rolling mean",
	Long:  "pythia renders Bollinger envelope charts of a ticker list and shows them as a ranked slideshow",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// bind the flags of the running sub-command so that PYTHIA_* env vars work for them too
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if viper.GetBool("debug") {
			log.SetLevel(log.DebugLevel)
		}

		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	cmdutil.PersistentFlags(RootCmd.PersistentFlags())
}

func Execute() {
	dotenvFile := ".env.local"
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			log.WithError(err).Fatal("error loading dotenv file")
		}
	}

	viper.SetEnvPrefix("pythia")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	log.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp: true,
	})

	logger := log.StandardLogger()
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	environment := os.Getenv("PYTHIA_ENV")
	switch environment {
	case "production", "prod":
		writer := &lumberjack.Logger{
			Filename:   path.Join("log", "pythia.log"),
			MaxSize:    50, // megabytes
			MaxBackups: 7,
			MaxAge:     28, // days
		}

		logger.AddHook(
			lfshook.NewHook(
				lfshook.WriterMap{
					log.DebugLevel: writer,
					log.InfoLevel:  writer,
					log.WarnLevel:  writer,
					log.ErrorLevel: writer,
					log.FatalLevel: writer,
				},
				&log.JSONFormatter{},
			),
		)
	}

	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
