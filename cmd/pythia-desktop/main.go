package main

import (
	"context"
	"errors"
	"net"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/zserge/lorca"

	"github.com/c9s/pythia/pkg/cmd"
	"github.com/c9s/pythia/pkg/cmd/cmdutil"
	"github.com/c9s/pythia/pkg/generator"
	"github.com/c9s/pythia/pkg/server"
)

func main() {
	dotenvFile := ".env.local"
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			log.WithError(err).Error("error loading dotenv file")
			return
		}
	}

	var args []string
	if runtime.GOOS == "linux" {
		args = append(args, "--class=pythia")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := cmdutil.LoadConfig()
	if err != nil {
		log.WithError(err).Error("can not load config")
		return
	}

	environ, err := cmdutil.NewEnvironment(ctx, conf)
	if err != nil {
		log.WithError(err).Error("failed to set up the environment")
		return
	}

	defer func() {
		if err := environ.Close(context.Background()); err != nil {
			log.WithError(err).Error("environment close error")
		}
	}()

	gen := environ.NewGenerator()
	report, err := gen.Generate(ctx, conf.Symbols())
	if err != nil {
		if errors.Is(err, generator.ErrNoSlides) || report == nil {
			log.WithError(err).Error("nothing to show")
			return
		}

		log.WithError(err).Warn("some tickers failed")
	}

	// here allocate a chrome window with a blank page.
	ui, err := lorca.New("", "", conf.Chart.Width+64, conf.Chart.Height+120, args...)
	if err != nil {
		log.WithError(err).Error("failed to initialize the window")
		return
	}

	defer ui.Close()

	// find a free port for binding the server
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.WithError(err).Error("can not bind listener")
		return
	}

	baseURL := "http://" + ln.Addr().String()

	go func() {
		if err := cmd.Show(ctx, cancel, ln, gen, report, false); err != nil {
			log.WithError(err).Errorf("server error")
		}
		cancel()
	}()

	log.Infof("pinging the server at %s", baseURL)
	go server.PingUntil(ctx, baseURL, func() {
		log.Infof("got pong, loading base url %s to ui...", baseURL)

		if err := ui.Load(baseURL); err != nil {
			log.WithError(err).Error("failed to load page")
		}
	})

	// Wait until the slideshow quits or the browser window is closed
	select {
	case <-ctx.Done():
	case <-ui.Done():
	}

	log.Println("exiting...")
}
