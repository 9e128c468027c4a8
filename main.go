package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/memo-hub/memo-hub/internal/cache"
	"github.com/memo-hub/memo-hub/internal/config"
	"github.com/memo-hub/memo-hub/internal/logging"
	"github.com/memo-hub/memo-hub/internal/proxy"
	"github.com/memo-hub/memo-hub/internal/server"
	"github.com/memo-hub/memo-hub/internal/server/routes"
	"github.com/memo-hub/memo-hub/internal/upstream"
	"github.com/memo-hub/memo-hub/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["upstreams"] = len(cfg.Upstreams)
		fields["caching_strategy"] = cfg.Global.CachingStrategy
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	registry, err := server.NewRegistry(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "构建上游注册表失败: %v\n", err)
		return 1
	}

	// CLI 启动遵循“配置 → Registry → 缓存策略 → Fiber server”顺序，
	// 保证所有请求共享统一的路由与缓存实例。
	strategy, cacheStatus, err := buildCacheStrategy(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存策略失败: %v\n", err)
		return 1
	}

	httpClient := upstream.NewClient(cfg)
	lookupHandler := proxy.NewHandler(httpClient, logger, strategy)

	fields := logging.BaseFields("startup", opts.configPath)
	fields["upstreams"] = config.UpstreamNames(cfg.Upstreams)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["caching_strategy"] = cfg.Global.CachingStrategy
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, registry, lookupHandler, cacheStatus, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildCacheStrategy 依据 caching_strategy 装配缓存门面，同时返回
// 诊断端点需要的组件视图。
func buildCacheStrategy(cfg *config.Config, logger *logrus.Logger) (cache.Strategy, routes.CacheStatus, error) {
	if !cfg.CachingEnabled() {
		return cache.NewPassthrough(), routes.CacheStatus{Strategy: config.StrategyNone}, nil
	}

	options := cfg.Global.CachingOptions
	deps, err := cache.NewDiskComponents(options.CachePath, options.DiskQuota, time.Duration(options.SweepFrequency))
	if err != nil {
		return nil, routes.CacheStatus{}, err
	}

	strategy, err := cache.NewFilesystemStrategy(deps, logger)
	if err != nil {
		return nil, routes.CacheStatus{}, err
	}

	status := routes.CacheStatus{
		Strategy: config.StrategyFilesystem,
		Path:     options.CachePath,
	}
	if monitor, ok := deps.Monitor.(*cache.DiskQuotaMonitor); ok {
		status.Monitor = monitor
	}
	if scheduler, ok := deps.Scheduler.(*cache.MarkerScheduler); ok {
		status.Scheduler = scheduler
	}
	return strategy, status, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("memo-hub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 MEMO_HUB_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("MEMO_HUB_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(
	cfg *config.Config,
	registry *server.Registry,
	lookupHandler server.LookupHandler,
	cacheStatus routes.CacheStatus,
	logger *logrus.Logger,
) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Registry:   registry,
		Lookup:     lookupHandler,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterCacheRoutes(app, cacheStatus)
	routes.RegisterUpstreamRoutes(app, registry)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
