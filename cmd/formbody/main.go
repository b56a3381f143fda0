// Command formbody runs a small upload server that exercises the decoder
// end to end: every POST to /upload is decoded according to its content type
// and answered with the resulting tree or the recorded violations.
package main

import (
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	formbody "github.com/reoring/formbody"
	"github.com/reoring/formbody/middleware/echomw"
)

type config struct {
	Addr       string `env:"FORMBODY_ADDR" envDefault:":8080"`
	UploadDir  string `env:"FORMBODY_UPLOAD_DIR"`
	LimitsFile string `env:"FORMBODY_LIMITS_FILE"`
	Pretty     bool   `env:"FORMBODY_PRETTY_LOG"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("parse environment")
	}

	log := newLogger(cfg.Pretty)

	limits, err := loadLimits(cfg.LimitsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.LimitsFile).Msg("load limits")
	}

	opt := formbody.Options{
		Limits:    limits,
		UploadDir: cfg.UploadDir,
		Logger:    &log,
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/upload", uploadHandler, echomw.DecodeBody(opt))

	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := e.Start(cfg.Addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func uploadHandler(c echo.Context) error {
	res, ok := echomw.GetResult(c)
	if !ok || !res.Handled() {
		return c.JSON(http.StatusUnsupportedMediaType, map[string]any{
			"error": "unsupported content type",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"body": res.Value()})
}

func newLogger(pretty bool) zerolog.Logger {
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// loadLimits reads decode limits from a YAML file; a missing path keeps
// everything unbounded.
func loadLimits(path string) (formbody.Limits, error) {
	var lim formbody.Limits
	if path == "" {
		return lim, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return lim, err
	}
	if err := yaml.Unmarshal(b, &lim); err != nil {
		return lim, err
	}
	return lim, nil
}
