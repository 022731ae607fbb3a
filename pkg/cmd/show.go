package cmd

import (
	"context"
	"errors"
	"net"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/pythia/pkg/cmd/cmdutil"
	"github.com/c9s/pythia/pkg/generator"
	"github.com/c9s/pythia/pkg/server"
	"github.com/c9s/pythia/pkg/slideshow"
)

func init() {
	cmdutil.SourceFlags(ShowCmd.Flags())
	ShowCmd.Flags().String("bind", "127.0.0.1:0", "the server bind address, port 0 picks a free port")
	ShowCmd.Flags().Bool("no-open", false, "do not open the slideshow in the browser")
	ShowCmd.Flags().String("schedule", "", "cron schedule for refreshing the charts, e.g. \"*/30 * * * *\"")
	ShowCmd.Flags().Bool("force", false, "render every chart even when it is fresh")
	RootCmd.AddCommand(ShowCmd)
}

// go run ./cmd/pythia show --schedule "*/30 * * * *"
var ShowCmd = &cobra.Command{
	Use:          "show [--bind=127.0.0.1:0] [--no-open] [--schedule=CRON]",
	Short:        "render the charts and show them as a ranked slideshow",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		conf, err := cmdutil.LoadConfig()
		if err != nil {
			return err
		}

		environ, err := cmdutil.NewEnvironment(ctx, conf)
		if err != nil {
			return err
		}

		defer closeEnvironment(environ)

		gen := environ.NewGenerator()
		gen.Force = viper.GetBool("force")
		gen.Progress = true

		report, err := gen.Generate(ctx, conf.Symbols())
		if err != nil {
			if errors.Is(err, generator.ErrNoSlides) || report == nil {
				return err
			}

			log.WithError(err).Warn("some tickers failed")
		}

		printReport(report)

		// the following runs only refresh the changed charts
		gen.Progress = false
		gen.Force = false

		ln, err := net.Listen("tcp", viper.GetString("bind"))
		if err != nil {
			return err
		}

		return Show(ctx, cancel, ln, gen, report, !viper.GetBool("no-open"))
	},
}

// Show runs the slideshow of report on ln until ctx is canceled, the user quits or a signal arrives.
func Show(ctx context.Context, cancel context.CancelFunc, ln net.Listener, gen *generator.Generator, report *generator.Report, openBrowser bool) error {
	conf := gen.Config

	player := slideshow.NewPlayer(report.Slides, conf.SlideDelay.Duration())
	srv := server.New(player, conf.GraphsDir)

	// the cron job and the refresh endpoint must not render into the graphs directory at the same time
	var mu sync.Mutex
	srv.Refresh = func(ctx context.Context) (*generator.Report, error) {
		mu.Lock()
		defer mu.Unlock()
		return gen.Generate(ctx, conf.Symbols())
	}

	srv.Quit = cancel

	if conf.Schedule != "" {
		scheduler, err := cmdutil.NewScheduler(conf.Schedule, func() {
			report, err := srv.Refresh(ctx)
			if report == nil || len(report.Slides) == 0 {
				log.WithError(err).Error("scheduled refresh failed, keeping the current slides")
				return
			}

			if err != nil {
				log.WithError(err).Warn("scheduled refresh completed with errors")
			}

			player.Replace(report.Slides)
			log.Infof("scheduled refresh done, %d slides", len(report.Slides))
		})
		if err != nil {
			return err
		}

		scheduler.Start()
		defer scheduler.Stop()

		log.Infof("refreshing the charts on schedule %q", conf.Schedule)
	}

	go player.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx, ln)
	}()

	if openBrowser {
		server.PingAndOpenURL(ctx, "http://"+ln.Addr().String())
	}

	go func() {
		cmdutil.WaitForSignal(ctx, syscall.SIGINT, syscall.SIGTERM)
		cancel()
	}()

	select {
	case <-ctx.Done():
		return <-serverDone

	case err := <-serverDone:
		cancel()
		return err
	}
}
