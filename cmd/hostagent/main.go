// Command hostagent runs the per-host agent: it discovers the
// applications running on this machine and exposes them, together with
// load balancer and registry controls, over a local HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/hostagent/config"
	"github.com/skillsenselab/hostagent/control"
	"github.com/skillsenselab/hostagent/control/eurekactl"
	"github.com/skillsenselab/hostagent/control/haproxyctl"
	"github.com/skillsenselab/hostagent/discovery"
	dockerdisc "github.com/skillsenselab/hostagent/discovery/docker"
	eurekadisc "github.com/skillsenselab/hostagent/discovery/eureka"
	svcdisc "github.com/skillsenselab/hostagent/discovery/svc"
	"github.com/skillsenselab/hostagent/haproxy"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/observability"
	"github.com/skillsenselab/hostagent/plugin"
	"github.com/skillsenselab/hostagent/process"
	"github.com/skillsenselab/hostagent/server"
	"github.com/skillsenselab/hostagent/util"
	"github.com/skillsenselab/hostagent/version"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env-file", "", "path to .env file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Short())
		return
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostagent: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("main")

	if err := run(cfg, log); err != nil {
		log.Fatal("agent failed", map[string]interface{}{"error": err.Error()})
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting hostagent", logger.Fields(
		"version", version.Short(),
		"environment", cfg.Environment,
	))

	provider, err := observability.Init(ctx, cfg.Observability, cfg.Name, version.Get().Version)
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.Warn("observability shutdown", map[string]interface{}{"error": err.Error()})
		}
	}()

	registry := haproxy.NewRegistry(cfg.HAProxy)
	log.Info("load balancer instances registered", logger.Fields(
		"instances", registry.Names(),
	))
	if cfg.Eureka.Enabled {
		log.Info("eureka registry configured", logger.Fields(
			"url", cfg.Eureka.URL,
			"username", util.MaskSecret(cfg.Eureka.Username, 2),
		))
	}

	runner := process.NewRunner()
	discoverers := []plugin.Factory[discovery.Discoverer]{
		svcdisc.Factory(cfg.SVC, runner),
		dockerdisc.Factory(cfg.Docker),
		eurekadisc.Factory(cfg.Eureka),
	}
	discoverers = append(discoverers, discovery.Factories.Factories()...)
	aggregator := discovery.NewAggregator(discoverers, provider.Metrics)

	controllers := []plugin.Factory[control.Controller]{
		haproxyctl.Factory(registry),
		eurekactl.Factory(cfg.Eureka),
	}
	controllers = append(controllers, control.Factories.Factories()...)
	dispatcher := control.NewDispatcher(controllers)

	// One discovery pass up front surfaces misconfigured providers in the
	// startup log instead of on the first API call.
	apps := aggregator.Run(ctx)
	log.Info("initial discovery complete", logger.Fields(
		"providers", aggregator.Providers(),
		"controllers", dispatcher.Controllers(),
		"applications", len(apps),
	))

	srv := server.New(cfg.Server, logger.GetGlobalLogger(), provider.Metrics)
	srv.RegisterRoutes(server.RouteDeps{
		ServiceName: cfg.Name,
		Aggregator:  aggregator,
		Dispatcher:  dispatcher,
		HAProxy:     registry,
		Metrics:     provider.Metrics,
	})

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")
	return srv.Stop(context.Background())
}
