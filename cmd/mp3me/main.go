// Command mp3me searches YouTube Music and downloads songs, releases and
// artists as tagged audio files from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ytget/mp3me/internal/app"
	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/logging"
	"github.com/ytget/mp3me/internal/telemetry"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage: mp3me <command> [options]

Commands:
  search <query>            search songs, releases and artists
  download <url|query>      download a URL, or the first song matching a query (--list shows them)
  library scan|list         index or list the download folder
  serve                     run the REST API
  settings get [key]        show settings
  settings set <key> <val>  change a setting
  version                   print the version
`)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	case "version", "--version":
		fmt.Fprintf(stdout, "mp3me %s\n", version)
		return 0
	}

	env := config.LoadEnv()
	closer, err := logging.Setup(logging.Options{Level: env.LogLevel, File: env.LogFile()})
	if err != nil {
		fmt.Fprintf(stderr, "failed to open log file: %v\n", err)
	}
	defer closer.Close()

	if err := telemetry.Init(env.SentryDSN, env.Release); err != nil {
		log.WithFields(log.Fields{"module": "main", "function": "run"}).Warnf("Sentry disabled: %v", err)
	}

	store, err := config.NewFileStore(env.SettingsFile())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	settings := config.NewSettings(store)

	if cmd == "settings" {
		return runSettings(rest, settings, stdout, stderr)
	}

	var handler func(ctx context.Context, a *app.App, args []string, stdout, stderr io.Writer) int
	switch cmd {
	case "search":
		handler = runSearch
	case "download":
		handler = runDownload
	case "library":
		handler = runLibrary
	case "serve":
		handler = runServe
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		usage(stderr)
		return 2
	}

	a, err := app.New(ctx, env, settings, version)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Close(shutdownCtx)
		telemetry.Flush(shutdownTimeout)
	}()

	return handler(ctx, a, rest, stdout, stderr)
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mp3me %s [options]\n\nOptions:\n", name)
		fs.PrintDefaults()
	}
	return fs
}
