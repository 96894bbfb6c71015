package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/central-university-dev/go-linkchecker/internal/checker"
	"github.com/central-university-dev/go-linkchecker/internal/common"
	"github.com/central-university-dev/go-linkchecker/internal/common/metrics"
	"github.com/central-university-dev/go-linkchecker/internal/config"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
	"github.com/central-university-dev/go-linkchecker/internal/feed"
	"github.com/central-university-dev/go-linkchecker/internal/scheduler"
	"github.com/central-university-dev/go-linkchecker/internal/session"
	"github.com/central-university-dev/go-linkchecker/internal/store"
	"github.com/central-university-dev/go-linkchecker/pkg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stderr, cfg.LogLevel)

	blogURL := cfg.BlogURL
	if len(os.Args) > 1 {
		blogURL = os.Args[1]
	}

	selection, err := store.ParseTypeSelection(cfg.SelectedTypes)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checkerClient := checker.NewClient(cfg, checker.PolicyFromConfig(cfg), appLogger)

	healthMonitor := scheduler.NewHealthMonitor(checkerClient, cfg.HealthCheckInterval, cfg.HealthTimeout, appLogger)
	healthMonitor.Start()

	defer healthMonitor.Stop()

	metricsServer := metrics.NewMetricsServer(cfg.ScanMetricsPort, checkerClient.Online, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик", "error", err)
		}
	}()

	results := store.NewResultStore()
	runner := scheduler.NewBatchScheduler(checkerClient, results, cfg.BatchSize, cfg.BatchDelay, appLogger)

	sess := session.NewSession(
		feed.NewBloggerClient(cfg, appLogger),
		common.NewLinkExtractor(common.NewLinkAnalyzer()),
		checkerClient,
		runner,
		results,
		cfg.ItemsPerPage,
		appLogger,
	)

	out := &reporter{out: os.Stdout}
	sess.Subscribe(out)

	if adv := sess.Analyze(ctx, blogURL); adv.Level == models.LevelError {
		return fmt.Errorf("анализ не выполнен: %s", adv.Text)
	}

	if sess.Mode() != models.ModeAnalyzed {
		return nil
	}

	out.breakdown(sess.Breakdown())

	sess.SetSelection(selection)
	sess.StartChecking(ctx)

	out.summary(sess.Counts())

	if cfg.RecheckURL != "" {
		sess.Recheck(ctx, cfg.RecheckURL)
	}

	if cfg.RecheckBroken {
		sess.RefreshBroken(ctx)
		out.summary(sess.Counts())
	}

	sess.SetDisplayFilter(store.StatusFilter(models.StatusError))

	page := sess.CurrentPage()
	out.page(page)

	for page.HasNext() {
		page = sess.NextPage()
		out.page(page)
	}

	out.broken(sess.BrokenURLs())

	return nil
}
