package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"methodorder/internal/analysis"
	"methodorder/internal/catalog"
	"methodorder/internal/collector"
	"methodorder/internal/config"
	"methodorder/internal/git"
	"methodorder/internal/index"
	"methodorder/internal/method"
	"methodorder/internal/resolver"
	"methodorder/internal/sorter"
	"methodorder/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootCmd = &cobra.Command{
		Use:   "methodorder",
		Short: "Deterministic method ordering for test classes",
	}
	dbPath     string
	configPath string
	verbose    bool

	strategyFlag     string
	fromSource       string
	includeSynthetic bool
	explain          bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the catalog database (SQLite); overrides project.db")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "methodorder.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	orderCmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "", "Force a strategy for every class in the chain")
	orderCmd.Flags().StringVar(&fromSource, "from-source", "", "Scan this path instead of reading the stored catalog")
	orderCmd.Flags().BoolVar(&includeSynthetic, "include-synthetic", false, "Include generated methods in the output")
	changedCmd.Flags().StringVar(&fromSource, "from-source", "", "Scan this path instead of reading the stored catalog")
	orderCmd.Flags().BoolVar(&explain, "explain", false, "Show which source chose the strategy of each class")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(changedCmd)
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Project.DB = dbPath
	}
	return cfg
}

// newRegistry returns the built-in strategies plus the custom ones this
// tool ships with.
func newRegistry() *sorter.Registry {
	reg := sorter.NewRegistry()
	descending := sorter.Custom("name_descending", func(a, b method.Descriptor) int {
		return sorter.NameAscending().Compare(b, a)
	})
	if err := reg.Register(descending); err != nil {
		log.Fatalf("Failed to register strategy: %v", err)
	}
	return reg
}

func newIndexer(cfg *config.Config, store storage.CatalogStore, logger *zap.Logger) *index.Indexer {
	exts, err := index.ForLanguages(cfg.Project.Languages)
	if err != nil {
		log.Fatalf("Failed to create extractors: %v", err)
	}
	return index.NewIndexer(exts, store, logger)
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the project and store its types and methods locally",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger()
		defer logger.Sync()

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Fatalf("Failed to resolve path: %v", err)
		}

		store, err := storage.NewSQLiteStore(cfg.Project.DB)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		fmt.Printf("📂 Scanning directory: %s\n", absRoot)
		start := time.Now()
		_, stats, err := newIndexer(cfg, store, logger).BuildCatalog(cmd.Context(), absRoot)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("✅ Scanned %d files (%d unchanged) in %v. Found %d types.\n",
			stats.Files, stats.Reused, time.Since(start), stats.Types)
		fmt.Printf("💾 Database: %s\n", cfg.Project.DB)
	},
}

// loadCatalog scans fromSource when given, otherwise reads the stored catalog.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) *catalog.Catalog {
	if fromSource != "" {
		c, _, err := newIndexer(cfg, nil, logger).BuildCatalog(ctx, fromSource)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		return c
	}

	store, err := storage.NewSQLiteStore(cfg.Project.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	c, err := newIndexer(cfg, store, logger).LoadCatalog(ctx)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	if len(c.Files) == 0 {
		log.Fatalf("Catalog %s is empty; run 'methodorder scan' first or pass --from-source", cfg.Project.DB)
	}
	return c
}

var orderCmd = &cobra.Command{
	Use:   "order <Type>",
	Short: "Print the ordered methods of a type and its ancestors",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger()
		defer logger.Sync()

		c := loadCatalog(cmd.Context(), cfg, logger)
		t, ok := c.Type(args[0])
		if !ok {
			log.Fatalf("Type %q not found (or ambiguous)", args[0])
		}

		reg := newRegistry()
		sources := []resolver.StrategySource{
			resolver.FixedSource{Strategy: strategyFlag},
			resolver.NewConfigSource(cfg.Ordering.Types),
			resolver.NewDirectiveSource(c),
		}
		chain := resolver.NewChain(reg, logger, sources...)

		opts, err := resolver.CollectorOptions(cfg, reg)
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		opts = append(opts, collector.WithLogger(logger))

		methods, err := collector.New(c, chain, opts...).OrderedMethods(t.Qualified)
		if err != nil {
			log.Fatalf("Ordering failed: %v", err)
		}

		if explain {
			for _, l := range c.InheritanceChain(t.Qualified) {
				var picked []string
				for _, r := range chain.Explain(l.Class) {
					if r.Matched {
						picked = append(picked, r.Source+"="+r.Strategy)
					}
				}
				if len(picked) == 0 {
					picked = append(picked, "default="+cfg.Ordering.Default)
				}
				fmt.Printf("# %s (depth %d): %s\n", l.Class, l.Depth, strings.Join(picked, ", "))
			}
		}

		n := 0
		for _, m := range methods {
			if m.Synthetic() && !includeSynthetic {
				continue
			}
			n++
			fmt.Printf("%3d  %s\n", n, m.Signature())
		}
	},
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available ordering strategies",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range newRegistry().Names() {
			fmt.Println(name)
		}
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the types in the stored catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger()
		defer logger.Sync()

		c := loadCatalog(cmd.Context(), cfg, logger)
		for _, t := range c.Types() {
			line := fmt.Sprintf("%s\t%s\t%d methods", t.Qualified, t.Language, len(t.Methods))
			if parents := t.ResolvedParents(); len(parents) > 0 {
				line += "\textends " + strings.Join(parents, ", ")
			}
			if t.Directive != "" {
				line += "\t[" + t.Directive + "]"
			}
			fmt.Println(line)
		}
	},
}

var changedCmd = &cobra.Command{
	Use:   "changed [ref]",
	Short: "List the types whose method order is affected by changes since ref (default HEAD)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger()
		defer logger.Sync()

		ref := "HEAD"
		if len(args) > 0 {
			ref = args[0]
		}

		dir := cfg.Project.Root
		if fromSource != "" {
			dir = fromSource
		}
		repoRoot, err := git.RepoRoot(dir)
		if err != nil {
			log.Fatalf("Not a git repository: %v", err)
		}
		changes, err := git.GetChangedFiles(repoRoot, ref)
		if err != nil {
			log.Fatalf("Failed to get git changes: %v", err)
		}
		if len(changes) == 0 {
			fmt.Println("✅ No changes detected.")
			return
		}
		fmt.Printf("📝 Detected %d changed files.\n", len(changes))

		c := loadCatalog(cmd.Context(), cfg, logger)
		report := analysis.NewAnalyzer(c, repoRoot).AnalyzeImpact(changes)
		for _, t := range report.DirectlyAffected {
			fmt.Printf("  * %s\n", t.Qualified)
		}
		for _, t := range report.IndirectlyAffected {
			fmt.Printf("  ~ %s (inherits changes)\n", t.Qualified)
		}
		fmt.Printf("🔍 %d types directly affected, %d through inheritance.\n",
			len(report.DirectlyAffected), len(report.IndirectlyAffected))
	},
}
