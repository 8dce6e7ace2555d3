package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/tank0226/current-task/internal/config"
	"github.com/tank0226/current-task/internal/control"
	"github.com/tank0226/current-task/internal/engine"
	"github.com/tank0226/current-task/internal/metrics"
	"github.com/tank0226/current-task/internal/rules"
	"github.com/tank0226/current-task/internal/source"
	"github.com/tank0226/current-task/internal/util"
)

var cli struct {
	Config   string `short:"c" help:"Path to YAML config" default:""`
	LogLevel string `help:"Log level (debug|info|warn|error), overrides config" default:""`
}

func main() {
	_ = godotenv.Load()
	kong.Parse(&cli,
		kong.Name("currenttask"),
		kong.Description("Condition-driven task status daemon"))

	cfgPath := cli.Config
	if cfgPath == "" {
		home, _ := os.UserHomeDir()
		cfgPath = filepath.Join(home, ".config", "current-task", "config.yaml")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		exitErr(fmt.Errorf("load config: %w", err))
	}
	level := cfg.LogLevel
	if cli.LogLevel != "" {
		level = cli.LogLevel
	}
	if env := os.Getenv("CURRENTTASK_LOG_LEVEL"); env != "" && cli.LogLevel == "" {
		level = env
	}
	logger := util.NewLogger(util.ParseLogLevel(level))

	cfgFullPath, err := filepath.Abs(cfgPath)
	if err != nil {
		exitErr(fmt.Errorf("resolve config path: %w", err))
	}
	cfgFullPath = filepath.Clean(cfgFullPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		exitErr(fmt.Errorf("watch config: %w", err))
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(cfgFullPath)); err != nil {
		exitErr(fmt.Errorf("watch config dir: %w", err))
	}
	if err := watcher.Add(cfgFullPath); err != nil {
		logger.Debugf("unable to watch config file directly: %v", err)
	}
	reloadRequests := make(chan string, 1)
	go watchConfig(logger.With("watcher"), watcher, cfgFullPath, reloadRequests)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := metrics.NewRecorder(nil)
	eng := engine.New(logger.With("engine"), recorder, rules.Build(cfg),
		time.Duration(cfg.TickIntervalMs)*time.Millisecond, time.Now())

	refresher, err := source.NewRefresher(
		source.NewFileSource(cfg.TasksFile), eng, recorder,
		time.Duration(cfg.RefreshIntervalMs)*time.Millisecond, logger.With("refresh"))
	if err != nil {
		exitErr(fmt.Errorf("create refresher: %w", err))
	}
	if err := refresher.Start(); err != nil {
		exitErr(fmt.Errorf("start refresher: %w", err))
	}
	defer func() {
		if err := refresher.Stop(); err != nil {
			logger.Warnf("stop refresher: %v", err)
		}
	}()

	reload := func(reason string) error {
		logger.Infof("%s, reloading config", reason)
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		for _, field := range config.StaticFieldChanges(cfg, loaded) {
			logger.Warnf("%s changed, restart required for it to take effect", field)
		}
		eng.ReloadRules(rules.Build(loaded))
		refresher.RefreshNow()
		return nil
	}

	ctrlSrv, err := control.NewServer(eng, logger.With("control"), reload, cfg.ControlSocket)
	if err != nil {
		exitErr(fmt.Errorf("start control server: %w", err))
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	errs := make(chan error, 3)
	go func() {
		errs <- eng.Run(ctx)
	}()
	go func() {
		errs <- ctrlSrv.Serve(ctx)
	}()
	if cfg.MetricsListen != "" {
		go func() {
			errs <- metrics.Serve(ctx, cfg.MetricsListen, recorder, logger.With("metrics"))
		}()
	}

	for {
		select {
		case err := <-errs:
			if err != nil && err != context.Canceled {
				logger.Errorf("daemon exited: %v", err)
				os.Exit(1)
			}
			logger.Infof("daemon stopped")
			return
		case reason := <-reloadRequests:
			if err := reload(reason); err != nil {
				logger.Errorf("reload failed: %v", err)
			}
		case sig := <-sigs:
			switch sig {
			case syscall.SIGHUP:
				if err := reload("received SIGHUP"); err != nil {
					logger.Errorf("reload failed: %v", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				logger.Infof("received %s, shutting down", sig)
				cancel()
			}
		}
	}
}

func watchConfig(logger *util.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
