package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/config"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/media"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/module"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/party"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/storage"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

var (
	cfgFile     string
	verbose     bool
	kindsFlag   string
	limitFlag   int
	outputPath  string
	outputType  string
	fetcherType string
	materialize bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "partyarchiver",
		Short: "Archiver for kemono/coomer party sites",
		Long: `partyarchiver turns a creator's paginated post listing into structured
records of posts, authors, attachments, and comments, then buckets the
material by content kind (subposts, videos, images, files).`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(modulesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [creator-url]",
		Short: "Scrape a creator page",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().StringVarP(&kindsFlag, "kinds", "k", "subposts", "comma-separated content kinds: subposts, videos, images, files")
	cmd.Flags().IntVarP(&limitFlag, "limit", "l", -1, "max items per content kind (-1 = unlimited)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (overrides config)")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: json, jsonl, mongodb (overrides config)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser (overrides config)")
	cmd.Flags().BoolVar(&materialize, "materialize", false, "also download attachment bodies for attachment kinds")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	targetURL := args[0]
	if err := config.ValidateURL(targetURL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", targetURL, err)
	}

	kinds, err := parseKinds(kindsFlag)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := buildFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer f.Close()

	registry := module.NewRegistry(logger)
	if err := registry.Register(party.New(cfg, f, logger)); err != nil {
		return err
	}

	// Subposts are always scraped first; attachment kinds are routed out
	// of them in a second pass, without re-fetching anything.
	subData, err := registry.Dispatch(ctx, &types.ScrapeParameters{
		URL:              targetURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  limitFlag,
	})
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	output := subData.Content
	attachmentKinds := withoutSubposts(kinds)
	if len(attachmentKinds) > 0 {
		attData, err := registry.Dispatch(ctx, &types.ScrapeParameters{
			URL:              targetURL,
			RequestedContent: attachmentKinds,
			ScrapeInstances:  limitFlag,
			Subposts:         subpostsOf(subData),
		})
		if err != nil {
			return fmt.Errorf("attachment routing failed: %w", err)
		}
		if !wantsSubposts(kinds) {
			output = attData.Content
		} else {
			output = append(output, attData.Content...)
		}

		if materialize {
			if err := materializeAttachments(ctx, cfg, f, attData.Content, logger); err != nil {
				return err
			}
		}
	}

	logger.Info("scrape complete", "records", len(output))
	return persist(cfg, output, logger)
}

// modulesCmd lists registered modules and their capabilities.
func modulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List available scraper modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			logger := setupLogger(cfg)
			f, err := fetcher.NewHTTPFetcher(cfg, logger)
			if err != nil {
				return err
			}
			defer f.Close()

			registry := module.NewRegistry(logger)
			if err := registry.Register(party.New(cfg, f, logger)); err != nil {
				return err
			}
			for _, info := range registry.List() {
				fmt.Printf("%s %s\n  sites: %s\n  contents: %v\n",
					info.Name, info.Version, strings.Join(info.Sites, ", "), info.Contents)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("partyarchiver", config.Version)
		},
	}
}

func applyOverrides(cfg *config.Config) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = outputType
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = fetcherType
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func buildFetcher(cfg *config.Config, logger *slog.Logger) (fetcher.Fetcher, error) {
	if cfg.Fetcher.Type == "browser" {
		return fetcher.NewBrowserFetcher(cfg, logger)
	}
	return fetcher.NewHTTPFetcher(cfg, logger)
}

func parseKinds(flag string) ([]types.ContentKind, error) {
	valid := map[string]types.ContentKind{
		"subposts": types.ContentSubposts,
		"videos":   types.ContentVideos,
		"images":   types.ContentImages,
		"files":    types.ContentFiles,
	}

	var kinds []types.ContentKind
	for _, part := range strings.Split(flag, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		kind, ok := valid[part]
		if !ok {
			return nil, fmt.Errorf("unknown content kind %q (valid: subposts, videos, images, files)", part)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("at least one content kind is required")
	}
	return kinds, nil
}

func wantsSubposts(kinds []types.ContentKind) bool {
	for _, k := range kinds {
		if k == types.ContentSubposts {
			return true
		}
	}
	return false
}

func withoutSubposts(kinds []types.ContentKind) []types.ContentKind {
	var out []types.ContentKind
	for _, k := range kinds {
		if k != types.ContentSubposts {
			out = append(out, k)
		}
	}
	return out
}

func subpostsOf(data *types.ModuleData) []*types.Post {
	var posts []*types.Post
	for _, rec := range data.Content {
		if rec.Kind == types.ContentSubposts && rec.Post != nil {
			posts = append(posts, rec.Post)
		}
	}
	return posts
}

func materializeAttachments(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, records []types.ProcessedScrapeData, logger *slog.Logger) error {
	var atts []*types.Attachment
	for _, rec := range records {
		if rec.Attachment != nil {
			atts = append(atts, rec.Attachment)
		}
	}
	if len(atts) == 0 {
		return nil
	}

	dl := media.NewDownloader(f, cfg.Media.MaxSizeMB, logger)
	done, err := dl.MaterializeAll(ctx, atts)
	if err != nil {
		return err
	}
	logger.Info("attachments materialized", "done", done, "total", len(atts))

	for _, att := range atts {
		if att.Binary == nil {
			continue
		}
		path, hash, err := dl.Save(att, cfg.Media.OutputDir)
		if err != nil {
			logger.Warn("attachment save failed", "name", att.Name, "error", err)
			continue
		}
		logger.Debug("attachment saved", "path", path, "sha256", hash[:16])
	}
	return nil
}

func persist(cfg *config.Config, records []types.ProcessedScrapeData, logger *slog.Logger) error {
	var sink storage.Storage
	var err error

	switch cfg.Storage.Type {
	case "none":
		return nil
	case "json":
		sink, err = storage.NewJSONStorage(cfg.Storage.OutputPath, logger)
	case "jsonl":
		sink, err = storage.NewJSONLStorage(cfg.Storage.OutputPath, logger)
	case "mongodb":
		sink, err = storage.NewMongoStorage(cfg.Storage.MongoURI, cfg.Storage.MongoDB, cfg.Storage.MongoColl, logger)
	default:
		return fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	if err := sink.Store(records); err != nil {
		sink.Close()
		return fmt.Errorf("store records: %w", err)
	}
	return sink.Close()
}
