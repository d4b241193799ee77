// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperfetch CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/internal/download"
	"github.com/pdiddy/paperfetch/internal/fetch"
	"github.com/pdiddy/paperfetch/internal/ident"
	"github.com/pdiddy/paperfetch/internal/library"
	"github.com/pdiddy/paperfetch/internal/logging"
	"github.com/pdiddy/paperfetch/internal/scihub"
	"github.com/pdiddy/paperfetch/internal/secrets"
	"github.com/pdiddy/paperfetch/internal/semantic"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, populated before any subcommand runs.
	cfg types.Config

	logger = zerolog.Nop()

	// configErr holds the result of reading the config file in initConfig.
	configErr error
)

// rootCmd is the base command for the paperfetch CLI.
var rootCmd = &cobra.Command{
	Use:   "paperfetch",
	Short: "Fetch academic papers from Sci-Hub and Semantic Scholar",
	Long: `paperfetch resolves paper identifiers to PDFs, downloads them, and
extracts Markdown text with a metadata header.

DOIs are resolved through a Sci-Hub mirror. Semantic Scholar paper IDs are
resolved through the Graph API and downloaded from their open-access link.
Every download is recorded in a local ledger so repeated requests are served
from disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}

		c, err := loadConfig(s)
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New(cfg.Logging)

		if f := viper.ConfigFileUsed(); f != "" && configErr == nil {
			logger.Debug().Str("file", f).Msg("using config file")
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paperfetch.yaml or ~/.config/paperfetch/paperfetch.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, or error (default info)")
	pf.String("log-format", "", "log format: console or json (default console)")
	pf.String("output-dir", "", "directory for downloaded PDFs (default ~/paper_downloads)")
	pf.Bool("no-library", false, "neither consult nor update the download ledger")

	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("output_dir", pf.Lookup("output-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperfetch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperfetch"))
		}
	}

	viper.SetEnvPrefix("PAPERFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(types.DefaultConfig())
	configErr = viper.ReadInConfig()
}

// setDefaults registers every config key with viper so that env overrides
// and Unmarshal see them. The Sci-Hub mirror and Semantic Scholar interval
// stay empty here and are resolved after secrets are applied.
func setDefaults(d types.Config) {
	defaults := map[string]any{
		"scihub.timeout":    d.SciHub.Timeout,
		"scihub.user_agent": d.SciHub.UserAgent,
		"scihub.mirror":     "",

		"semantic.timeout":      d.Semantic.Timeout,
		"semantic.user_agent":   d.Semantic.UserAgent,
		"semantic.max_retries":  d.Semantic.MaxRetries,
		"semantic.base_delay":   d.Semantic.BaseDelay,
		"semantic.base_url":     d.Semantic.BaseURL,
		"semantic.api_key":      d.Semantic.APIKey,
		"semantic.min_interval": time.Duration(0),

		"download.max_retries":     d.Download.MaxRetries,
		"download.base_delay":      d.Download.BaseDelay,
		"download.connect_timeout": d.Download.ConnectTimeout,
		"download.read_timeout":    d.Download.ReadTimeout,
		"download.max_time":        d.Download.MaxTime,
		"download.min_size":        d.Download.MinSize,
		"download.use_curl":        d.Download.UseCurl,
		"download.user_agent":      d.Download.UserAgent,

		"conversion.backend": string(d.Conversion.Backend),

		"logging.level":  d.Logging.Level,
		"logging.format": d.Logging.Format,

		"output_dir": d.OutputDir,
		"library_db": "",
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig decodes viper state into a Config, layers secrets on top, and
// validates the result.
func loadConfig(s map[string]string) (types.Config, error) {
	var notFound viper.ConfigFileNotFoundError
	if configErr != nil && !errors.As(configErr, &notFound) {
		return types.Config{}, fmt.Errorf("reading config: %w", configErr)
	}

	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	secrets.Apply(&c, s)
	if c.Semantic.MinInterval == 0 {
		c.Semantic.MinInterval = types.SemanticInterval(c.Semantic.APIKey)
	}
	if c.LibraryDB == "" {
		c.LibraryDB = filepath.Join(c.OutputDir, library.DBFile)
	}

	if err := c.Validate(); err != nil {
		return types.Config{}, err
	}
	return c, nil
}

// newConverter returns the converter named by the command's --backend flag,
// falling back to the configured backend.
func newConverter(cmd *cobra.Command) (convert.Converter, error) {
	backend := cfg.Conversion.Backend
	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		backend = types.ConversionBackend(f.Value.String())
	}
	return convert.New(cmd.Context(), backend, nil)
}

// sourceAuto routes each identifier by its form: DOIs to Sci-Hub, other
// IDs to Semantic Scholar.
const sourceAuto = "auto"

// sourceSet builds fetchers on first use so a run only pays for the sources
// it touches.
type sourceSet struct {
	flag    string
	conv    convert.Converter
	sources map[string]fetch.Source
}

func newSourceSet(flag string, conv convert.Converter) (*sourceSet, error) {
	switch flag {
	case sourceAuto, types.SourceSciHub, types.SourceSemantic:
	default:
		return nil, fmt.Errorf("unknown source %q (want %s, %s, or %s)", flag, types.SourceSciHub, types.SourceSemantic, sourceAuto)
	}
	return &sourceSet{flag: flag, conv: conv, sources: map[string]fetch.Source{}}, nil
}

// resolve returns the fetcher for id and id in the form that fetcher takes.
func (s *sourceSet) resolve(id string) (fetch.Source, string) {
	var name, target string
	if s.flag == sourceAuto {
		name, target = ident.Route(id)
	} else {
		name, target = s.flag, ident.ForSource(s.flag, id)
	}

	src, ok := s.sources[name]
	if !ok {
		switch name {
		case types.SourceSciHub:
			src = scihub.New(cfg.SciHub, s.conv, logger)
		default:
			client := semantic.NewClient(cfg.Semantic, logger)
			src = semantic.NewFetcher(client, download.New(cfg.Download, logger), s.conv, logger)
		}
		s.sources[name] = src
	}
	return src, target
}

// openLedger opens the download ledger, or returns nil when --no-library
// is set.
func openLedger(cmd *cobra.Command) (*library.Ledger, error) {
	if off, _ := cmd.Flags().GetBool("no-library"); off {
		return nil, nil
	}
	return library.Open(cfg.LibraryDB)
}

// cachedEntry returns the ledger entry for id when its file is still intact.
func cachedEntry(ctx context.Context, ledger *library.Ledger, source, id string) (library.Entry, bool) {
	if ledger == nil {
		return library.Entry{}, false
	}
	e, err := ledger.Lookup(ctx, source, id)
	if err != nil {
		if !errors.Is(err, library.ErrNotRecorded) {
			logger.Warn().Err(err).Str("id", id).Msg("ledger lookup failed")
		}
		return library.Entry{}, false
	}
	if !e.Exists() || download.ValidatePDF(e.Path) != nil {
		logger.Info().Str("id", id).Str("path", e.Path).Msg("recorded file is missing or changed, downloading again")
		return library.Entry{}, false
	}
	return e, true
}

// recordDownload writes the metadata sidecar for paper and records it in
// the ledger under id, the identifier it was requested by, so later
// lookups with the same input hit. Failures are logged; the download itself
// already succeeded.
func recordDownload(ctx context.Context, ledger *library.Ledger, id string, paper types.Paper) {
	if _, err := library.WriteSidecar(paper, paper.PDFPath); err != nil {
		logger.Warn().Err(err).Str("id", id).Msg("writing metadata sidecar")
	}
	if ledger == nil {
		return
	}
	entry := paper
	entry.ID = id
	if _, err := ledger.Record(ctx, entry, paper.PDFPath); err != nil {
		logger.Warn().Err(err).Str("id", id).Msg("recording download")
	}
}

// entryPaper rebuilds the paper record for a ledger entry, preferring the
// metadata sidecar beside the PDF.
func entryPaper(e library.Entry) types.Paper {
	paper := types.Paper{ID: e.Identifier, Title: e.Title, Source: e.Source}
	if e.Source == types.SourceSciHub {
		paper.DOI = e.Identifier
	}
	if meta, err := library.ReadSidecar(e.Path); err == nil {
		paper = *meta
	}
	paper.PDFPath = e.Path
	return paper
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
