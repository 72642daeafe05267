package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	console "mvcclock/src/cli"
	"mvcclock/src/controller"
	"mvcclock/src/logging"
	"mvcclock/src/metrics"
	"mvcclock/src/pages"
	"mvcclock/src/render"
)

// errShutdown cancels the run group once the page should stop.
var errShutdown = errors.New("shutdown")

func main() {
	app := cli.App{
		Name:    "mvcclock",
		Usage:   "model-view-controller clock page",
		Version: versioninfo.Short(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "page",
				Usage:   "page identifier; defaults to the id of the document's <html> element",
				EnvVars: []string{"CLOCK_PAGE"},
			},
			&cli.StringFlag{
				Name:    "document",
				Usage:   "HTML document whose #output element receives the clock; scaffolded when missing",
				EnvVars: []string{"CLOCK_DOCUMENT"},
			},
			&cli.BoolFlag{
				Name:  "html",
				Usage: "render into the default document under the XDG state directory",
			},
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "tick period",
				Value:   controller.DefaultInterval,
				EnvVars: []string{"CLOCK_INTERVAL"},
			},
			&cli.DurationFlag{
				Name:    "duration",
				Usage:   "stop after this long (0 runs until the exit command or a signal)",
				EnvVars: []string{"CLOCK_DURATION"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level",
				Value:   "info",
				EnvVars: []string{"CLOCK_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "write prometheus metrics to this textfile periodically and on exit",
				EnvVars: []string{"CLOCK_METRICS_FILE"},
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "read commands (start, stop, status, log on|off, pages, exit) from stdin; defaults to on when stdin is a terminal",
				Value: stdinIsTerminal(),
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mvcclock: %v\n", err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logging.New(os.Stderr, cctx.String("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	defer func() { _ = log.Sync() }()

	term := console.NewConsole(os.Stdin, os.Stdout)
	pageID := cctx.String("page")

	var target render.Target = term
	docPath := cctx.String("document")
	if docPath == "" && cctx.Bool("html") {
		docPath, err = xdg.StateFile("mvcclock/index.html")
		if err != nil {
			return err
		}
	}
	if docPath != "" {
		scaffoldID := pageID
		if scaffoldID == "" {
			scaffoldID = pages.DefaultPage
		}
		created, err := render.Scaffold(docPath, scaffoldID)
		if err != nil {
			return err
		}
		if created {
			log.Infow("created document", "path", docPath)
		}
		el, err := render.OpenElement(docPath, render.DefaultOutputID)
		if err != nil {
			return err
		}
		if pageID == "" {
			pageID = el.PageID()
		}
		target = el
	}

	rec := metrics.NewRecorder()
	registry := pages.Default(log)
	page, err := registry.Boot(pageID, pages.Env{
		Target:   target,
		Interval: cctx.Duration("interval"),
		Log:      log,
		Metrics:  rec,
		TimeLog:  logging.NewTimeLogger(log),
	})
	if err != nil {
		return err
	}
	defer page.Close()

	metricsFile := cctx.String("metrics-file")
	exited := make(chan struct{})
	if cctx.Bool("interactive") {
		dispatcher := console.NewDispatcher(page, registry, term)
		// stdin reads cannot be cancelled, so the dispatcher stays outside the group
		go func() {
			if dispatcher.Run() {
				close(exited)
				return
			}
			log.Debugw("command input closed, clock keeps running")
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var deadline <-chan time.Time
		if d := cctx.Duration("duration"); d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			deadline = timer.C
		}
		select {
		case <-gctx.Done():
		case <-exited:
		case <-deadline:
		}
		return errShutdown
	})
	if metricsFile != "" {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if err := rec.WriteTextfile(metricsFile); err != nil {
						log.Warnw("failed to write metrics", "path", metricsFile, "error", err)
					}
				}
			}
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}

	page.Controller.Stop()
	term.EndLine()
	if metricsFile != "" {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}
	log.Debugw("shutdown", "page", page.ID, "uptime", rec.Uptime())
	return nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
