// Package main provides the CLI entrypoint for tuitable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/config"
	"github.com/verte-zerg/tuitable/internal/logging"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/planner"
	"github.com/verte-zerg/tuitable/internal/report"
	"github.com/verte-zerg/tuitable/internal/schedule"
	"github.com/verte-zerg/tuitable/internal/search"
	"github.com/verte-zerg/tuitable/internal/store"
	"github.com/verte-zerg/tuitable/internal/tui"
)

const (
	defaultCacheTTL = 24 * time.Hour
	defaultTimeout  = 30 * time.Second
)

var (
	catalogBaseURL     string
	catalogDir         string
	catalogMajors      string
	catalogLiberalArts string
	catalogCacheTTL    time.Duration
	catalogTimeout     time.Duration
	catalogNoCache     bool
	searchPageSize     int
	logLevel           string
	logFormat          string

	searchQuery   string
	searchGrades  []int
	searchDays    []string
	searchTimes   []int
	searchMajors  []string
	searchCredits string
	searchPage    int

	fetchRefresh bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuitable",
		Short:         "TUI course timetable planner",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUICmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&catalogBaseURL, "base-url", "", "base URL the catalog JSON files are served from")
	flags.StringVar(&catalogDir, "dir", "", "read the catalog JSON files from a local directory instead")
	flags.StringVar(&catalogMajors, "majors-file", catalog.DefaultPaths[catalog.Majors], "file name of the majors collection")
	flags.StringVar(&catalogLiberalArts, "liberal-arts-file", catalog.DefaultPaths[catalog.LiberalArts], "file name of the liberal-arts collection")
	flags.DurationVar(&catalogCacheTTL, "cache-ttl", defaultCacheTTL, "how long a cached catalog stays fresh (0 never expires)")
	flags.DurationVar(&catalogTimeout, "timeout", defaultTimeout, "HTTP timeout per catalog request")
	flags.BoolVar(&catalogNoCache, "no-cache", false, "bypass the local catalog cache")
	flags.IntVar(&searchPageSize, "page-size", search.DefaultPageSize, "results revealed per page")
	flags.StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", logging.DefaultFormat, "log format (json, console)")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newMajorsCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// env is the wiring shared by every command that needs the catalog.
type env struct {
	cfg     model.Config
	logger  *zap.Logger
	store   *store.Store
	catalog *catalog.Catalog
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, config.DefaultLogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	e := &env{cfg: cfg, logger: logger}
	var cache catalog.PayloadCache
	if !catalogNoCache {
		st, err := store.Open(config.DefaultCachePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog cache: %w", err)
		}
		e.store = st
		cache = st
	}
	e.catalog = catalog.New(planner.NewSource(cfg, cache, logger), logger)
	logger.Debug("environment ready",
		zap.String("base_url", cfg.BaseURL),
		zap.String("dir", cfg.Dir),
		zap.Bool("cache", cache != nil),
	)
	return e, nil
}

func (e *env) Close() {
	if e.store != nil {
		if cerr := e.store.Close(); cerr != nil {
			logErrf("failed to close catalog cache: %v\n", cerr)
		}
	}
	if err := e.logger.Sync(); err != nil {
		// Best-effort flush of the log file.
		_ = err
	}
}

func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "base-url", &catalogBaseURL, fileCfg.Catalog.BaseURL)
	applyStringConfig(cmd, "dir", &catalogDir, fileCfg.Catalog.Dir)
	applyStringConfig(cmd, "majors-file", &catalogMajors, fileCfg.Catalog.Majors)
	applyStringConfig(cmd, "liberal-arts-file", &catalogLiberalArts, fileCfg.Catalog.LiberalArts)
	applyDurationConfig(cmd, "cache-ttl", &catalogCacheTTL, fileCfg.Catalog.CacheTTL)
	applyDurationConfig(cmd, "timeout", &catalogTimeout, fileCfg.Catalog.Timeout)
	applyIntConfig(cmd, "page-size", &searchPageSize, fileCfg.Search.PageSize)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	cfg := model.Config{
		BaseURL:     catalogBaseURL,
		Dir:         catalogDir,
		Majors:      catalogMajors,
		LiberalArts: catalogLiberalArts,
		CacheTTL:    catalogCacheTTL,
		Timeout:     catalogTimeout,
		PageSize:    searchPageSize,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	p := planner.New(e.catalog, e.cfg.PageSize, e.logger)
	program := tea.NewProgram(tui.NewModel(p, e.logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog and print matching lectures",
		Args:  cobra.NoArgs,
		RunE:  runSearchCmd,
	}
	cmd.Flags().StringVarP(&searchQuery, "query", "q", "", "text matched against title and code")
	cmd.Flags().IntSliceVar(&searchGrades, "grade", nil, "grades to include (repeatable)")
	cmd.Flags().StringSliceVar(&searchDays, "day", nil, "days to include, e.g. mon or 월 (repeatable)")
	cmd.Flags().IntSliceVar(&searchTimes, "time", nil, "time slots to include, 1-24 (repeatable)")
	cmd.Flags().StringSliceVar(&searchMajors, "major", nil, "majors to include, raw or tag form (repeatable)")
	cmd.Flags().StringVar(&searchCredits, "credits", "", "credits prefix, e.g. 3")
	cmd.Flags().IntVar(&searchPage, "page", 1, "number of pages to reveal")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, _ []string) error {
	criteria, err := buildCriteria()
	if err != nil {
		return err
	}
	if searchPage < 1 {
		return fmt.Errorf("--page must be >= 1")
	}
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.catalog.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	criteria.Majors = resolveMajors(criteria.Majors, e.catalog.Majors())

	session := search.NewSession(entries, e.cfg.PageSize, search.WithMemoSize(0))
	session.SetCriteria(criteria)
	for session.Page() < searchPage && session.Observe(true) {
		session.Observe(false)
	}
	return report.RenderResults(os.Stdout, session.Visible(), session.Count(), session.Page(), session.LastPage(), report.TerminalWidth())
}

func buildCriteria() (model.SearchCriteria, error) {
	c := model.SearchCriteria{
		Query:   strings.TrimSpace(searchQuery),
		Grades:  searchGrades,
		Times:   searchTimes,
		Majors:  searchMajors,
		Credits: search.ParseCredits(searchCredits),
	}
	for _, raw := range searchDays {
		day, ok := model.ParseDay(raw)
		if !ok {
			return model.SearchCriteria{}, fmt.Errorf("invalid --day %q", raw)
		}
		c.Days = append(c.Days, day)
	}
	for _, slot := range searchTimes {
		if slot < 1 || slot > schedule.SlotCount {
			return model.SearchCriteria{}, fmt.Errorf("--time must be between 1 and %d", schedule.SlotCount)
		}
	}
	return c, nil
}

// resolveMajors maps tag or display forms given on the command line to the raw
// catalog majors. Unknown values are kept as given.
func resolveMajors(wanted, known []string) []string {
	out := make([]string, 0, len(wanted))
	for _, w := range wanted {
		resolved := w
		for _, k := range known {
			if w == k || w == catalog.MajorTag(k) || w == catalog.MajorDisplay(k) {
				resolved = k
				break
			}
		}
		out = append(out, resolved)
	}
	return out
}

func newMajorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "majors",
		Short: "List the majors in the catalog",
		Args:  cobra.NoArgs,
		RunE:  runMajorsCmd,
	}
}

func runMajorsCmd(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	if _, err := e.catalog.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	return report.RenderMajors(os.Stdout, e.catalog.Majors())
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <schedule>",
		Short: "Parse schedule text and print its blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return report.RenderBlocks(os.Stdout, schedule.Parse(args[0]))
		},
	}
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the catalog into the local cache",
		Args:  cobra.NoArgs,
		RunE:  runFetchCmd,
	}
	cmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "drop cached copies before fetching")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, _ []string) error {
	if catalogNoCache {
		return fmt.Errorf("fetch needs the cache; drop --no-cache")
	}
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if fetchRefresh {
		if err := e.store.Invalidate(ctx); err != nil {
			return fmt.Errorf("failed to clear catalog cache: %w", err)
		}
	}
	entries, err := e.catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	infos, err := e.store.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog cache: %w", err)
	}
	if err := report.RenderCache(os.Stdout, infos); err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stdout, "\n%d lectures, %d majors\n", len(entries), len(e.catalog.Majors()))
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuitable configuration
# Uncomment a value to enable it. CLI flags override config values.

[catalog]
# base-url = "https://example.org/timetable/"   # Where the catalog JSON files are served
# dir = "/path/to/catalog"                      # Read the JSON files from disk instead
# majors = %q
# liberal-arts = %q
# cache-ttl = %q                                # How long a cached catalog stays fresh
# timeout = %q                                  # HTTP timeout per request

[search]
# page-size = %d                                # Results revealed per page

[log]
# level = %q                                    # debug, info, warn, error
# format = %q                                   # json or console
`,
		catalog.DefaultPaths[catalog.Majors],
		catalog.DefaultPaths[catalog.LiberalArts],
		defaultCacheTTL.String(),
		defaultTimeout.String(),
		search.DefaultPageSize,
		logging.DefaultLevel,
		logging.DefaultFormat,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.BaseURL == "" && cfg.Dir == "" {
		return fmt.Errorf("no catalog source: set --base-url or --dir (or [catalog] base-url in %s)", config.DefaultConfigPath())
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("--page-size must be > 0")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if cfg.CacheTTL < 0 {
		return fmt.Errorf("--cache-ttl must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
