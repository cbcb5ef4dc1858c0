package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/always-cache/accelerator"
	"github.com/always-cache/accelerator/config"
	responsetransformer "github.com/always-cache/accelerator/pkg/response-transformer"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	originFlag         string
	hostFlag           string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&originFlag, "origin", "", "Origin URL to proxy to (overrides config)")
	flag.StringVar(&hostFlag, "host", "", "Hostname to send to origin")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on (if not set in config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

// fileConfig is the layout of the -config file.
// The accelerator subtree is flattened into settings, see config.Flatten.
type fileConfig struct {
	Listen      string                    `yaml:"listen"`
	Origin      string                    `yaml:"origin"`
	Host        string                    `yaml:"host"`
	Rules       responsetransformer.Rules `yaml:"rules"`
	Accelerator map[string]any            `yaml:"accelerator"`
}

func readConfig(filename string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(data, &cfg)
	return cfg, err
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			defer logFileOutput.Close()
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	var cfg fileConfig
	if configFilenameFlag != "" {
		var err error
		if cfg, err = readConfig(configFilenameFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not read config")
		}
	}
	if originFlag != "" {
		cfg.Origin = originFlag
	}
	if hostFlag != "" {
		cfg.Host = hostFlag
	}
	if cfg.Listen == "" {
		cfg.Listen = fmt.Sprintf(":%d", portFlag)
	}
	if cfg.Origin == "" {
		log.Fatal().Msg("Please specify origin")
	}

	originURL, err := url.Parse(cfg.Origin)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not parse url")
	}

	inst, err := accelerator.NewFromSettings(config.Flatten(cfg.Accelerator), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create accelerator")
	}
	defer inst.Close()

	proxy := httputil.NewSingleHostReverseProxy(originURL)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		if cfg.Host != "" {
			r.Host = cfg.Host
		}
	}
	proxy.ModifyResponse = cfg.Rules.ModifyResponse(&log.Logger)

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/_accelerator/stats", inst.StatsHandler())
	r.With(inst.Middleware).Handle("/*", proxy)

	server := &http.Server{Addr: cfg.Listen, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info().Msgf("Proxying %s to %s (with hostname '%s')", cfg.Listen, originURL.String(), cfg.Host)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server failed")
	}
}
