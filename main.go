// hcsync is the help-center translation sync tool: it pushes articles,
// sections and categories to a translation management system and pulls the
// finished translations back into locale-specific help-center records.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/localehub/hcsync/artifact"
	"github.com/localehub/hcsync/config"
	"github.com/localehub/hcsync/content"
	"github.com/localehub/hcsync/helpcenter"
	"github.com/localehub/hcsync/langmeta"
	"github.com/localehub/hcsync/lockfile"
	"github.com/localehub/hcsync/locales"
	"github.com/localehub/hcsync/settings"
	"github.com/localehub/hcsync/tms"
	"github.com/localehub/hcsync/transfer"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	cfgPath  string
	logLevel string
)

// logLevels maps the CLI log-level selector onto zap levels. "critical" is
// reserved for the final diagnostic entry of a failed run.
var logLevels = map[string]zapcore.Level{
	"debug":    zapcore.DebugLevel,
	"info":     zapcore.InfoLevel,
	"warning":  zapcore.WarnLevel,
	"error":    zapcore.ErrorLevel,
	"critical": zapcore.DPanicLevel,
}

func logLevelNames() string {
	return "debug, info, warning, error, critical"
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hcsync",
		Short: "Help-center translation sync",
		Long: `hcsync — help-center translation sync.

Transfers help-center content between the content platform and the
translation system:

  push        Send source articles/sections/categories out for translation
  pull        Retrieve finished translations and upsert them back
  locales     Show the configured locale mapping
  auth        Manage stored API credentials

Configuration lives in hcsync.yaml (see --config). API credentials may come
from the config file, the credential store (hcsync auth set), or the
HCSYNC_HC_TOKEN / HCSYNC_TMS_KEY environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", config.ConfigFileName, "Path to hcsync.yaml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: "+logLevelNames())

	root.AddCommand(
		newPushCmd(),
		newPullCmd(),
		newLocalesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared setup
// ---------------------------------------------------------------------------

// app holds everything a subcommand needs after configuration is loaded.
type app struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	close func()
	pipe  *transfer.Pipeline
}

func setup() (*app, error) {
	level, ok := logLevels[logLevel]
	if !ok {
		return nil, fmt.Errorf("invalid log level %q (valid: %s)", logLevel, logLevelNames())
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// Config-file credentials win; the store and environment fill the gaps.
	creds := settings.Load()
	if cfg.HelpCenter.Token == "" {
		cfg.HelpCenter.Token = creds.HelpCenterToken
	}
	if cfg.TMS.APIKey == "" {
		cfg.TMS.APIKey = creds.TMSKey
	}

	logger, closeLog, err := newLogger(level, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	lmap, err := locales.New(cfg.Locales)
	if err != nil {
		closeLog()
		return nil, err
	}

	lock, err := lockfile.Load(filepath.Dir(cfgPath))
	if err != nil {
		closeLog()
		return nil, err
	}

	pipe := &transfer.Pipeline{
		Source:          helpcenter.New(cfg.HelpCenter.URL, cfg.HelpCenter.User, cfg.HelpCenter.Token),
		TMS:             tms.New(cfg.TMS.URL, cfg.TMS.APIKey, cfg.TMS.ProjectID),
		Locales:         lmap,
		SourceLocale:    cfg.SourceLocale,
		IncludeArticles: cfg.IncludeArticles,
		ExcludeArticles: cfg.ExcludeArticles,
		Authorize:       cfg.AuthorizeUploads(),
		Artifacts:       &artifact.Store{SourceDir: cfg.SourceDir, TranslationDir: cfg.TranslationDir},
		Lock:            lock,
		Log:             logger,
	}

	return &app{cfg: cfg, log: logger, close: closeLog, pipe: pipe}, nil
}

// newLogger builds the leveled run logger: console output on stderr plus an
// optional plain-text log file.
func newLogger(level zapcore.Level, logFile string) (*zap.SugaredLogger, func(), error) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoder := zapcore.NewConsoleEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level),
	}
	closeFile := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", logFile, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), level))
		closeFile = func() { f.Close() }
	}

	l := zap.New(zapcore.NewTee(cores...))
	return l.Sugar(), func() { _ = l.Sync(); closeFile() }, nil
}

// fatal writes the final diagnostic entry for a failed run and returns the
// short summary error that terminates the process.
func fatal(log *zap.SugaredLogger, err error) error {
	var hcErr *helpcenter.StatusError
	var tmsErr *tms.APIError
	switch {
	case errors.As(err, &hcErr):
		log.DPanicf("help-center API error %d: %s", hcErr.Status, hcErr.Body)
		return fmt.Errorf("help-center API error %d, check log for details", hcErr.Status)
	case errors.As(err, &tmsErr):
		log.DPanicf("translation API error %d: %s", tmsErr.Status, tmsErr.Body)
		return fmt.Errorf("translation API error %d, check log for details", tmsErr.Status)
	default:
		log.DPanicf("%v", err)
		return err
	}
}

// ---------------------------------------------------------------------------
// Selector parsing
// ---------------------------------------------------------------------------

// parseIDList parses a comma-separated id list. The literal "all" is handled
// by the callers before parsing.
func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty id list")
	}
	return ids, nil
}

// typeSelectors pairs each item type with its CLI selector value, in
// transfer order.
type typeSelector struct {
	Type content.ItemType
	Value string
}

func selectors(categories, sections, articles string) []typeSelector {
	return []typeSelector{
		{content.TypeCategory, categories},
		{content.TypeSection, sections},
		{content.TypeArticle, articles},
	}
}

func anySelected(sel []typeSelector) bool {
	for _, s := range sel {
		if s.Value != "" {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// push (help center → translation system)
// ---------------------------------------------------------------------------

func newPushCmd() *cobra.Command {
	var (
		articles    string
		sections    string
		categories  string
		incremental bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send source content to the translation system",
		Long: `Send source-language articles, sections and categories to the
translation system for translation.

Each selector takes a comma-separated id list or the literal "all". Draft
articles are excluded from "all" unless the configuration names an explicit
include list. With --incremental, items unchanged since the previous push
are skipped.`,
		Example: `  hcsync push --articles 901922090,901922091 --categories all
  hcsync push --articles all --incremental`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := selectors(categories, sections, articles)
			if !anySelected(sel) {
				return fmt.Errorf("specify at least one of --articles, --sections, --categories")
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()
			a.pipe.Incremental = incremental

			if err := a.pipe.Artifacts.CleanSource(); err != nil {
				return err
			}

			a.log.Info("beginning transfer of source content to the translation system")
			for _, s := range sel {
				if s.Value == "" {
					continue
				}
				if s.Value == "all" {
					if err := a.pipe.PushAll(s.Type); err != nil {
						return fatal(a.log, err)
					}
					continue
				}
				ids, err := parseIDList(s.Value)
				if err != nil {
					return fmt.Errorf("--%ss: %w", s.Type, err)
				}
				if err := a.pipe.PushItems(s.Type, ids); err != nil {
					return fatal(a.log, err)
				}
			}

			if incremental {
				if err := a.pipe.Lock.Save(); err != nil {
					return err
				}
			}
			logSuccess("push complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&articles, "articles", "a", "", `Article ids to send, or "all"`)
	cmd.Flags().StringVarP(&sections, "sections", "s", "", `Section ids to send, or "all"`)
	cmd.Flags().StringVarP(&categories, "categories", "c", "", `Category ids to send, or "all"`)
	cmd.Flags().BoolVar(&incremental, "incremental", false, "Skip items unchanged since the last push")

	return cmd
}

// ---------------------------------------------------------------------------
// pull (translation system → help center)
// ---------------------------------------------------------------------------

func newPullCmd() *cobra.Command {
	var (
		articles      string
		sections      string
		categories    string
		localeList    string
		retrievalType string
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Retrieve translations and upsert them into the help center",
		Long: `Retrieve finished translations from the translation system and
create or update the corresponding help-center translation records.

--locales takes a comma-separated list of help-center locales or the literal
"all". Each selector takes a comma-separated id list or "all"; "all" pulls
only items the translation system reports fully translated.`,
		Example: `  hcsync pull --locales all --articles all
  hcsync pull --locales fr,de --articles 901922090 --retrieval-type pending`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := selectors(categories, sections, articles)
			if !anySelected(sel) {
				return fmt.Errorf("specify at least one of --articles, --sections, --categories")
			}
			if localeList == "" {
				return fmt.Errorf("specify --locales (comma-separated list, or all)")
			}
			if !tms.ValidRetrievalKind(retrievalType) {
				return fmt.Errorf("invalid retrieval type %q (valid: published, pending, pseudo)", retrievalType)
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			locs, err := a.pipe.Locales.ExpandList(localeList)
			if err != nil {
				return fmt.Errorf("%w\nvalid locales: %s", err, strings.Join(a.pipe.Locales.Sources(), ","))
			}
			kind := tms.RetrievalKind(retrievalType)

			if err := a.pipe.Artifacts.CleanTranslations(); err != nil {
				return err
			}

			a.log.Info("beginning transfer of translations from the translation system")
			for _, s := range sel {
				if s.Value == "" {
					continue
				}
				if s.Value == "all" {
					if err := a.pipe.PullAll(s.Type, locs, kind); err != nil {
						return fatal(a.log, err)
					}
					continue
				}
				ids, err := parseIDList(s.Value)
				if err != nil {
					return fmt.Errorf("--%ss: %w", s.Type, err)
				}
				if err := a.pipe.PullItems(s.Type, ids, locs, kind); err != nil {
					return fatal(a.log, err)
				}
			}

			logSuccess("pull complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&articles, "articles", "a", "", `Article ids to retrieve, or "all"`)
	cmd.Flags().StringVarP(&sections, "sections", "s", "", `Section ids to retrieve, or "all"`)
	cmd.Flags().StringVarP(&categories, "categories", "c", "", `Category ids to retrieve, or "all"`)
	cmd.Flags().StringVarP(&localeList, "locales", "l", "", `Help-center locales to retrieve, or "all"`)
	cmd.Flags().StringVarP(&retrievalType, "retrieval-type", "y", "published", "Translation stage: published, pending or pseudo")

	return cmd
}

// ---------------------------------------------------------------------------
// locales (show the configured mapping)
// ---------------------------------------------------------------------------

func newLocalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "Show the configured locale mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			lmap, err := locales.New(cfg.Locales)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "\n%-10s %-14s %s\n", "Source", "Translation", "Language")
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 44))
			for _, src := range lmap.Sources() {
				dst, _ := lmap.ToTranslation(src)
				meta := langmeta.Resolve(src)
				fmt.Fprintf(os.Stderr, "%-10s %-14s %s %s\n", src, dst, meta.Flag, meta.Name)
			}
			fmt.Fprintln(os.Stderr)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// auth (manage stored credentials)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored API credentials",
	}

	var hcToken, tmsKey string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store API credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hcToken == "" && tmsKey == "" {
				return fmt.Errorf("specify --hc-token and/or --tms-key")
			}
			creds := settings.Load()
			if hcToken != "" {
				creds.HelpCenterToken = hcToken
			}
			if tmsKey != "" {
				creds.TMSKey = tmsKey
			}
			if err := settings.Save(creds); err != nil {
				return err
			}
			logSuccess("credentials saved to %s", settings.FilePath())
			return nil
		},
	}
	set.Flags().StringVar(&hcToken, "hc-token", "", "Help-center API token")
	set.Flags().StringVar(&tmsKey, "tms-key", "", "Translation-system API key")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show stored credentials (masked)",
		Run: func(cmd *cobra.Command, args []string) {
			creds := settings.Load()
			fmt.Fprintf(os.Stderr, "  Store:              %s\n", settings.FilePath())
			fmt.Fprintf(os.Stderr, "  Help-center token:  %s\n", settings.MaskKey(creds.HelpCenterToken))
			fmt.Fprintf(os.Stderr, "  Translation key:    %s\n", settings.MaskKey(creds.TMSKey))
		},
	}

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Delete stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logInfo("credentials removed")
			return nil
		},
	}

	auth.AddCommand(set, show, remove)
	return auth
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hcsync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}
