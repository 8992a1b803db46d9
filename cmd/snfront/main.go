// Package main is the snfront CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/snfront/internal/cache"
	"github.com/hyperjump/snfront/internal/cli"
	"github.com/hyperjump/snfront/internal/client"
	"github.com/hyperjump/snfront/internal/config"
	"github.com/hyperjump/snfront/internal/models"
	"github.com/hyperjump/snfront/internal/query"
	"github.com/hyperjump/snfront/internal/redirect"
	"github.com/hyperjump/snfront/internal/search"
	"github.com/hyperjump/snfront/internal/server"
	"github.com/hyperjump/snfront/internal/sites"
	"github.com/hyperjump/snfront/internal/storage"
	"github.com/hyperjump/snfront/internal/watcher"
	"github.com/hyperjump/snfront/pkg/utils"
)

var version = "dev"

const defaultConfigPath = config.DefaultPath

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded (for the reload watcher).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "suggest":
		runSuggest()
	case "chat":
		runChat()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("snfront version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds the long-lived dependencies of the server.
type Components struct {
	Client   *client.Client
	Cache    cache.Cache
	QueryLog storage.QueryLog
	Service  *search.Service
}

// Close releases the cache and query log.
func (c *Components) Close() {
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.QueryLog != nil {
		_ = c.QueryLog.Close()
	}
}

func newClient(baseURL string, cfg *config.APIConfig, logger *zap.Logger) *client.Client {
	return client.New(baseURL,
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(cfg.UserAgent),
		client.WithLogger(logger),
	)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{Client: newClient(cfg.API.BaseURL, &cfg.API, logger)}

	respCache, err := cache.New(cache.Options{
		Backend:       cfg.Cache.Backend,
		Capacity:      cfg.Cache.Capacity,
		RedisAddr:     cfg.Cache.RedisAddr,
		RedisDB:       cfg.Cache.RedisDB,
		RedisPassword: cfg.Cache.RedisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.Cache = respCache

	opts := []search.Option{
		search.WithUpstreams(func(baseURL string) search.Backend {
			return newClient(baseURL, &cfg.API, logger)
		}),
	}
	if respCache != nil {
		opts = append(opts, search.WithCache(respCache, cfg.Search.SuggestCacheTTL, cfg.Search.ChatCacheTTL))
	}
	if cfg.Search.AutocompleteRate > 0 {
		opts = append(opts, search.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Search.AutocompleteRate), cfg.Search.AutocompleteBurst)))
	}
	if cfg.Storage.DatabasePath != "" {
		queryLog, err := storage.NewSQLiteLog(cfg.Storage.DatabasePath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize query log: %w", err)
		}
		c.QueryLog = queryLog
		opts = append(opts, search.WithQueryLog(queryLog))
	}
	c.Service = search.NewService(c.Client, logger, opts...)
	logger.Info("components initialized",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("query_log", c.QueryLog != nil),
		zap.Bool("autocomplete_limit", cfg.Search.AutocompleteRate > 0),
	)
	return c, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (upstream calls, config reloads, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.Int("sites", len(cfg.Sites)),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	registry := sites.NewRegistry(cfg.Sites)
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(resolvedConfigPath, watcher.ReloadSites(registry, logger), watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Warn("config watcher disabled", zap.String("path", resolvedConfigPath), zap.Error(err))
	}

	srv := server.NewServer(
		components.Service,
		registry,
		components.QueryLog,
		&cfg.Server,
		server.Info{APIBaseURL: cfg.API.BaseURL, CacheBackend: cfg.Cache.Backend, Version: version},
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: snfront search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. An empty query searches everything.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Filters are passed through to the API as given; take them from a facet link.
  • --fq and --tr may be repeated; order is kept.
  • --href follows a link from a previous result (facet, page, spelling) and runs it.

Examples:
  snfront search --site docs cats
  snfront search --site docs --fq color:black --sort newest cats
  snfront search --site docs --href '?q=cats&p=2'
  snfront search --site docs --output json cats
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// configPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func configPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if v, ok := strings.CutPrefix(a, "-config="); ok {
			return v
		}
	}
	return defaultPath
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// cliDefaults are the values one-shot commands fall back to when flags are not given.
type cliDefaults struct {
	api     string
	site    string
	cfg     *config.Config
	apiConf config.APIConfig
}

// defaultsFromConfig loads config at path for the API base URL and site defaults. A missing
// or invalid config is not an error for one-shot commands; the environment still applies.
func defaultsFromConfig(path string) cliDefaults {
	d := cliDefaults{api: os.Getenv(config.EnvAPIBaseURL)}
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	d.cfg = cfg
	d.apiConf = cfg.API
	if d.api == "" {
		d.api = cfg.API.BaseURL
	}
	if len(cfg.Sites) > 0 {
		d.site = cfg.Sites[0].Name
	}
	return d
}

// lookupSite returns the configured site called name, or a bare site when none is configured.
func (d cliDefaults) lookupSite(name string) (sites.Site, error) {
	registry := sites.NewRegistry(d.cfg.Sites)
	site, err := registry.Lookup(name)
	if err != nil {
		if near, ok := registry.Closest(name); ok {
			return sites.Site{}, fmt.Errorf("%w (did you mean %q?)", err, near.Name)
		}
		return sites.Site{}, err
	}
	return site, nil
}

func newCLIService(api string, apiConf config.APIConfig, debug bool) (*search.Service, *zap.Logger, error) {
	if api == "" {
		return nil, nil, fmt.Errorf("no API base URL: pass --api or set %s", config.EnvAPIBaseURL)
	}
	logger, err := utils.NewCLILogger(debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	c := newClient(api, &apiConf, logger)
	return search.NewService(c, logger), logger, nil
}

// searchState builds the query state for the search command. When href is set, it is
// resolved against the page for the flag state and the result replaces the flag state.
func searchState(site sites.Site, values query.Params, href string) models.QueryState {
	state := site.State(values.Values())
	if href == "" {
		return state
	}
	current := redirect.PageURL(site.Name)
	current.RawQuery = query.Build(state)
	resolved := redirect.Resolve(current, href)
	return site.State(query.ParseParams(resolved.RawQuery).Values())
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])
	defaults := defaultsFromConfig(configPathFromArgs(searchArgs, defaultConfigPath))

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	_ = fs.String("config", defaultConfigPath, "config file path (for API base URL and site defaults)")
	api := fs.String("api", defaults.api, "SN search API base URL")
	siteName := fs.String("site", defaults.site, "site name")
	page := fs.Int("page", models.FirstPage, "result page")
	locale := fs.String("locale", "", "result locale, e.g. en_US")
	sortBy := fs.String("sort", "", "sort order (default relevance)")
	var facets, traces stringList
	fs.Var(&facets, "fq", "facet filter (repeatable)")
	fs.Var(&traces, "tr", "trace filter (repeatable)")
	nfpr := fs.String("nfpr", "", "no fuzzy partial results flag")
	href := fs.String("href", "", "server link from a previous result to follow")
	debug := fs.Bool("debug", false, "log upstream calls to stderr")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	site, err := defaults.lookupSite(*siteName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	svc, logger, err := newCLIService(*api, defaults.apiConf, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	params := query.Params{}.
		Add(query.ParamQuery, buildSearchQuery(fs.Args())).
		Add(query.ParamPage, fmt.Sprint(*page))
	if *locale != "" {
		params = params.Add(query.ParamLocale, *locale)
	}
	if *sortBy != "" {
		params = params.Add(query.ParamSort, *sortBy)
	}
	for _, f := range facets {
		params = params.Add(query.ParamFacet, f)
	}
	for _, t := range traces {
		params = params.Add(query.ParamTrace, t)
	}
	if *nfpr != "" {
		params = params.Add(query.ParamNoFuzzy, *nfpr)
	}
	state := searchState(site, params, *href)

	result := svc.Run(context.Background(), site, state)
	if err := cli.WriteSearchResults(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if result.ErrorMessage != "" {
		os.Exit(1)
	}
}

func runSuggest() {
	args := searchArgsReorder(os.Args[2:])
	defaults := defaultsFromConfig(configPathFromArgs(args, defaultConfigPath))

	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	_ = fs.String("config", defaultConfigPath, "config file path")
	api := fs.String("api", defaults.api, "SN search API base URL")
	siteName := fs.String("site", defaults.site, "site name")
	locale := fs.String("locale", "", "locale")
	debug := fs.Bool("debug", false, "log upstream calls to stderr")
	_ = fs.Parse(args)

	site, err := defaults.lookupSite(*siteName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
		os.Exit(1)
	}
	svc, logger, err := newCLIService(*api, defaults.apiConf, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	state := models.QueryState{Q: buildSearchQuery(fs.Args()), Locale: *locale}
	cli.WriteSuggestions(os.Stdout, svc.Suggest(context.Background(), site, state))
}

func runChat() {
	args := searchArgsReorder(os.Args[2:])
	defaults := defaultsFromConfig(configPathFromArgs(args, defaultConfigPath))

	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	_ = fs.String("config", defaultConfigPath, "config file path")
	api := fs.String("api", defaults.api, "SN search API base URL")
	siteName := fs.String("site", defaults.site, "site name")
	locale := fs.String("locale", "", "locale")
	debug := fs.Bool("debug", false, "log upstream calls to stderr")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	site, err := defaults.lookupSite(*siteName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}
	svc, logger, err := newCLIService(*api, defaults.apiConf, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	state := models.QueryState{Q: buildSearchQuery(fs.Args()), Locale: *locale}
	answer := svc.Chat(context.Background(), site, state)
	if answer == nil {
		fmt.Fprintln(os.Stderr, "No answer.")
		os.Exit(1)
	}
	_ = cli.WriteChat(os.Stdout, answer, format)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "snfront server URL")
	site := fs.String("site", "", "limit query log stats to one site")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	status, err := statusViaHTTP(*serverURL, *site)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL, site string) (*cli.Status, error) {
	endpoint := strings.TrimSuffix(serverURL, "/") + "/api/v1/status"
	if site != "" {
		endpoint += "?" + url.Values{"site": {site}}.Encode()
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	var status cli.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}

func printUsage() {
	fmt.Println(`snfront - Search front-end for SN sites

Usage:
  snfront server [flags]            Start the HTTP front-end
  snfront search [flags] <query>    Run a search against the SN API
  snfront suggest [flags] <query>   Print autocomplete suggestions
  snfront chat [flags] <query>      Print the generative answer
  snfront status [flags]            Show server status and query log stats
  snfront version                   Show version
  snfront help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/snfront/config.yaml)
  --debug            Enable debug logging (upstream calls, config reloads, etc.)

Search Flags:
  --config string    Config file path (for API base URL and site defaults)
  --api string       SN search API base URL (default from config or SNFRONT_API_BASE_URL)
  --site string      Site name (default: first configured site)
  --page int         Result page (default: 1)
  --locale string    Result locale
  --sort string      Sort order (default: relevance)
  --fq string        Facet filter, repeatable
  --tr string        Trace filter, repeatable
  --nfpr string      No fuzzy partial results flag
  --href string      Follow a server link from a previous result
  --output string    Output format: text, compact or json (default: text)

Suggest/Chat Flags:
  --api, --site, --locale as above; chat also takes --output text|json

Status Flags:
  --server string    Server URL (default: http://localhost:8080)
  --site string      Limit query log stats to one site
  --output string    Output format: text or json (default: text)

Examples:
  snfront server
  snfront search --site docs "machine learning"
  snfront search --site docs --fq type:pdf --output compact report
  snfront suggest --site docs mach
  snfront chat --site docs what is snfront
  snfront status --output json`)
}
