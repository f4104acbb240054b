package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	log "github.com/sirupsen/logrus"

	mp3me "github.com/ytget/mp3me/internal/app"
	"github.com/ytget/mp3me/internal/config"
	"github.com/ytget/mp3me/internal/logging"
	"github.com/ytget/mp3me/internal/telemetry"
	"github.com/ytget/mp3me/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.mp3me"
	AppName = "MP3ME"

	shutdownTimeout = 10 * time.Second
)

func main() {
	env := config.LoadEnv()
	closer, err := logging.Setup(logging.Options{Level: env.LogLevel, File: env.LogFile()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
	}
	defer closer.Close()

	logger := log.WithFields(log.Fields{"module": "main", "function": "main"})
	logger.Infof("%s %s starting", AppName, version)

	if err := telemetry.Init(env.SentryDSN, env.Release); err != nil {
		logger.Warnf("Sentry disabled: %v", err)
	}
	defer telemetry.Flush(shutdownTimeout)

	myApp := app.NewWithID(AppID)
	settings := config.NewSettings(myApp.Preferences())
	myApp.Settings().SetTheme(ui.NewCompactTheme(settings.GetAccentColor()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := mp3me.New(ctx, env, settings, version)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	if err := services.CheckTools(ctx); err != nil {
		logger.Warn("Downloads will fail until yt-dlp is installed")
	}

	myWindow := myApp.NewWindow(fmt.Sprintf("%s %s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	root := ui.NewRootUI(myWindow, myApp, ui.Deps{
		Settings:  settings,
		Search:    services.Search,
		Downloads: services.Downloads,
		Library:   services.Library,
		Scanner:   services.Scanner,
		Artwork:   services.Artwork,
		LogFile:   env.LogFile(),
		Version:   version,
	})

	// The monitor has a single listener: pause the queue and update the indicator.
	services.Monitor.OnChange(func(online bool) {
		services.Downloads.SetOnline(online)
		fyne.Do(func() { root.SetOnline(online) })
	})
	go services.Monitor.Run(ctx)

	if env.ServeAPI {
		go func() {
			if err := services.API().Run(ctx, env.APIAddr); err != nil {
				logger.Errorf("API server stopped: %v", err)
			}
		}()
	}

	// With a system tray the window only hides on close, so cleanup waits for Quit.
	myApp.Lifecycle().SetOnStopped(func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := services.Close(shutdownCtx); err != nil {
			logger.Warnf("Shutdown: %v", err)
		}
	})

	myWindow.ShowAndRun()
}
