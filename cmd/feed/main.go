package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"bmxfeed/internal/archive"
	"bmxfeed/internal/client"
	"bmxfeed/internal/obs"
	"bmxfeed/internal/ops"
	"bmxfeed/internal/recorder"
	"bmxfeed/internal/request"
	"bmxfeed/internal/response"
	"bmxfeed/internal/source"
	"bmxfeed/pkg/conn"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"go.uber.org/zap"
)

const stopTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to JSON or TOML config")
	sourceName := flag.String("source", "", "Frame source: live|replay (overrides config)")
	replayFiles := flag.String("replay", "", "Comma separated replay files (implies -source=replay)")
	subscribe := flag.String("subscribe", "", "Comma separated topics, e.g. trade:XBTUSD,quote:XBTUSD")
	testnet := flag.Bool("testnet", false, "Connect to the testnet endpoint")
	logFormat := flag.String("log-format", "", "Log format: text|json")
	metricsAddr := flag.String("metrics-addr", "", "Serve prometheus metrics on this address")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address; empty disables profiling")
	archiveDSN := flag.String("archive-dsn", "", "Postgres DSN for the trade archive")
	captureDir := flag.String("capture-dir", "", "Record data frames into this directory")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	applyFlags(&cfg, *sourceName, *replayFiles, *subscribe, *testnet, *logFormat, *metricsAddr, *pyroscopeAddr, *archiveDSN, *captureDir)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, syncLogger, err := newLogger(cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer syncLogger()

	if cfg.Pyroscope.ServerAddress != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Pyroscope.ApplicationName,
			ServerAddress:   cfg.Pyroscope.ServerAddress,
			Tags: map[string]string{
				"source": cfg.Source,
			},
			Logger: profilerLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	metrics := obs.NewMetrics()
	if cfg.Metrics.Addr != "" {
		server := serveMetrics(cfg.Metrics.Addr, metrics)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	src, err := newSource(cfg, metrics)
	if err != nil {
		log.Fatalf("source init failed: %v", err)
	}

	cli, err := client.New(src, client.WithLogger(logger), client.WithMetrics(metrics))
	if err != nil {
		log.Fatalf("client init failed: %v", err)
	}
	hub := cli.Streams()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Archive.DSN != "" {
		archiver, closeDB, err := newArchiver(ctx, cfg, cli, logger)
		if err != nil {
			log.Fatalf("archive init failed: %v", err)
		}
		defer closeDB()
		wg.Add(1)
		go func() {
			defer wg.Done()
			archiver.Run(ctx)
		}()
	}

	hub.Errors.Subscribe(func(e response.ErrorResponse) {
		logs.Errorf("bitmex error: status=%d error=%s", e.Status, e.Error)
	})
	hub.Subscriptions.Subscribe(func(s response.SubscribeResponse) {
		if s.IsUnsubscribe() {
			logs.Infof("unsubscribed: %s success=%v", s.Unsubscribe, s.Success)
			return
		}
		logs.Infof("subscribed: %s success=%v", s.Subscribe, s.Success)
	})
	hub.Authentication.Subscribe(func(a response.AuthenticationResponse) {
		logs.Infof("authenticated: success=%v", a.Success)
	})
	if cfg.Source == ops.SourceLive {
		// The server greets every new session with an info frame; that is
		// the point where requests are accepted again after a reconnect.
		hub.Info.Subscribe(func(info response.InfoResponse) {
			logs.Infof("connected: %s version=%s", info.Info, info.Version)
			onSession(ctx, cli, cfg)
		})
	}

	if err := cli.Start(ctx); err != nil {
		log.Fatalf("source start failed: %v", err)
	}

	if cfg.Source == ops.SourceLive {
		<-sys.Shutdown()
		logs.Infof("shutting down")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := cli.Stop(stopCtx); err != nil {
		logs.Errorf("source stop failed: %v", err)
	}
	cancel()
	wg.Wait()

	s := metrics.Snapshot()
	log.Printf("metrics: frames=%d empty=%d control=%d unhandled=%d malformed=%d panics=%d sends=%d send_failures=%d captured=%d capture_drops=%d dispatch=%+v",
		s.Frames, s.Empty, s.Control, s.Unhandled, s.Malformed, s.Panics, s.Sends, s.SendFailures, s.Captured, s.CaptureDrops, s.DispatchLatency)
	for _, kind := range s.HandledKinds() {
		log.Printf("  %-16s %d", kind, s.Handled[kind])
	}
}

func loadConfig(path string) (ops.Config, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

func applyFlags(cfg *ops.Config, sourceName, replayFiles, subscribe string, testnet bool, logFormat, metricsAddr, pyroscopeAddr, archiveDSN, captureDir string) {
	if files := splitList(replayFiles); len(files) > 0 {
		cfg.Source = ops.SourceReplay
		cfg.Replay.Files = files
	}
	if sourceName != "" {
		cfg.Source = strings.ToLower(sourceName)
	}
	if topics := splitList(subscribe); len(topics) > 0 {
		cfg.Subscriptions = topics
	}
	if testnet {
		cfg.Live.URL = source.DefaultTestURL
	}
	if logFormat != "" {
		cfg.LogFormat = strings.ToLower(logFormat)
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if pyroscopeAddr != "" {
		cfg.Pyroscope.ServerAddress = pyroscopeAddr
	}
	if archiveDSN != "" {
		cfg.Archive.DSN = archiveDSN
	}
	if captureDir != "" {
		capture := recorder.DefaultConfig(captureDir)
		cfg.Capture = &capture
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func newLogger(format string) (obs.Logger, func(), error) {
	if format != ops.LogFormatJSON {
		return obs.Logs{}, func() {}, nil
	}
	z, err := zap.NewProduction()
	if err != nil {
		return nil, nil, err
	}
	return obs.NewZap(z), func() { _ = z.Sync() }, nil
}

func newSource(cfg ops.Config, metrics *obs.Metrics) (source.Source, error) {
	var (
		src source.Source
		err error
	)
	switch cfg.Source {
	case ops.SourceReplay:
		src, err = recorder.NewPlayback(cfg.Replay)
	default:
		src, err = source.NewLive(cfg.Live)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Capture == nil {
		return src, nil
	}
	w, err := recorder.NewWriter(*cfg.Capture)
	if err != nil {
		return nil, err
	}
	logs.Infof("capturing session %s into %s", w.Session(), cfg.Capture.Dir)
	return recorder.Capture(src, w, metrics), nil
}

func newArchiver(ctx context.Context, cfg ops.Config, cli *client.Client, logger obs.Logger) (*archive.Archiver, func(), error) {
	pg, err := conn.NewPostgres(ctx, conn.Option{ConnString: cfg.Archive.DSN})
	if err != nil {
		return nil, nil, err
	}
	store := archive.NewGormStore(pg.DB())
	if err := store.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	a := archive.NewArchiver(cli.Streams().Trades, store, cfg.Archive.BatchSize, logger)
	return a, func() { _ = pg.Close() }, nil
}

func onSession(ctx context.Context, cli *client.Client, cfg ops.Config) {
	if cfg.HasCredentials() {
		if err := cli.Authenticate(ctx, cfg.APIKey, cfg.APISecret); err != nil {
			logs.Errorf("authenticate failed: %v", err)
		}
	}
	if len(cfg.Subscriptions) == 0 {
		return
	}
	if err := cli.Send(ctx, request.Subscribe(cfg.Subscriptions...)); err != nil {
		logs.Errorf("subscribe failed: %v", err)
	}
}

func serveMetrics(addr string, metrics *obs.Metrics) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(obs.NewCollector(metrics))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Errorf("metrics server failed: %v", err)
		}
	}()
	return server
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...any)  { logs.Debugf(format, args...) }
func (profilerLogger) Debugf(format string, args ...any) { logs.Debugf(format, args...) }
func (profilerLogger) Errorf(format string, args ...any) { logs.Errorf(format, args...) }
