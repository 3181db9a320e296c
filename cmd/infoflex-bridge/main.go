// Command infoflex-bridge queries the Infoflex workshop databases and
// pushes contactable customers to Rule.io.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driven/config/file"
	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driven/ruleio"
	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driven/storage/infoflex"
	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driven/storage/sqlite"
	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driving/cli"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/services"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
	"github.com/niemi-bil/infoflex-bridge/internal/normalisers/party"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap wires adapters and services from the config file at path.
func bootstrap(path string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	registry := services.NewEnvironmentRegistry(settings.Environments, settings.DefaultEnvironment)
	classifier := services.NewClassifier(settings.Keywords)
	opener := infoflex.NewOpener(settings.Query.Driver)
	executor := services.NewExecutor(registry, opener, classifier, party.New(settings.Query.PhonePriority), settings.Query)
	aggregator := services.NewAggregator(registry, executor, settings.Query.Concurrency)
	phones := services.NewPhoneLookupService(aggregator, settings.Query.Concurrency)
	receipts := services.NewReceiptService(registry, opener, settings.Query)

	var sink driven.SubscriberSink
	if settings.Sink.Configured() {
		client, err := ruleio.NewClient(ruleio.ConfigFromSettings(settings.Sink))
		if err != nil {
			return nil, err
		}
		sink = client
	} else {
		logger.Debug("rule.io is not configured, only dry runs can push")
	}
	builder := services.NewSubscriberBuilder(registry, settings.Sink.Tags, settings.Sink.Language)
	pusher := services.NewPushService(aggregator, sink, builder)

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	scheduler := services.NewScheduler(settings.DailyPush, store.History(), pusher)

	watcher := file.NewWatcher(configStore, func() {
		reloaded, err := settingsService.Get()
		if err != nil {
			logger.Warn("reloaded configuration is invalid: %v", err)
			return
		}
		classifier.SetTable(reloaded.Keywords)
		logger.Info("keyword table reloaded: %d keywords", reloaded.Keywords.Len())
	})

	return &cli.Services{
		Registry:    registry,
		Classifier:  classifier,
		Orders:      aggregator,
		Phones:      phones,
		Pusher:      pusher,
		Subscribers: pusher,
		Receipts:    receipts,
		Scheduler:   scheduler,
		Settings:    settingsService,
		Config:      configStore,
		DailyPush:   settings.DailyPush,
		HTTPAddr:    settings.HTTPAddr,
		Location:    settings.DailyPush.Location,
		Watch:       watcher.Run,
		Close: func() error {
			return errors.Join(opener.Close(), store.Close())
		},
	}, nil
}
