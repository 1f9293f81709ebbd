package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sxnet/internal/config"
	"sxnet/internal/metrics"
	"sxnet/internal/report"
	"sxnet/internal/repository"
	"sxnet/internal/repository/sqlite"
	"sxnet/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	format := flag.String("format", "", "Output format: text, json or yaml")
	outDir := flag.String("out", "", "Write one file per host into this directory instead of stdout")
	dbPath := flag.String("db", "", "SQLite snapshot database path")
	save := flag.Bool("save", false, "Store every analysis as a snapshot")
	metricsFile := flag.String("metrics-file", "", "Write prometheus metrics to this textfile")
	list := flag.Bool("list", false, "List stored snapshots, optionally for the host given as argument")
	find := flag.String("find", "", "List stored interfaces that carried this IPv4 address")
	verbose := flag.Bool("v", false, "Log every source read")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <report>...\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Each report is an extracted sosreport directory or a .tar, .tar.gz, .tar.bz2 or .tar.xz archive.")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 2
	}

	// Flags override the config file
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *save || *list || *find != "" {
		cfg.Database.Enabled = true
	}
	if *metricsFile != "" {
		cfg.Metrics.Textfile = *metricsFile
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("%v", err)
		return 2
	}
	if *verbose {
		log.Printf("Config: %s", cfg.Summary())
	}

	var repo repository.SnapshotRepository
	if cfg.Database.Enabled {
		sqliteRepo, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			log.Printf("Failed to open database: %v", err)
			return 1
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
		if *verbose {
			log.Printf("Database opened: %s", cfg.Database.Path)
		}
	}

	eventBus := service.NewEventBus()
	if *verbose {
		eventChan := make(chan service.Event, 100)
		eventBus.Subscribe(eventChan)
		go func() {
			for event := range eventChan {
				log.Printf("event %s %s %v", event.Type, event.Report, event.Payload)
			}
		}()
	}

	reg := metrics.DefaultRegistry()
	svc := service.NewAnalysisService(cfg.Sources, reg, repo, eventBus)
	svc.Verbose = *verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *list:
		snaps, err := svc.ListSnapshots(ctx, flag.Arg(0))
		if err != nil {
			log.Printf("Failed to list snapshots: %v", err)
			return 1
		}
		fmt.Print(report.Snapshots(snaps))
		return 0
	case *find != "":
		matches, err := svc.FindAddress(ctx, *find)
		if err != nil {
			log.Printf("Failed to search snapshots: %v", err)
			return 1
		}
		fmt.Print(report.AddressMatches(*find, matches))
		return 0
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	code := analyzeReports(ctx, svc, cfg, flag.Args(), *save)

	if cfg.Metrics.Textfile != "" {
		if err := reg.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Printf("Failed to write metrics: %v", err)
			code = 1
		}
	}
	return code
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, _, err := config.LoadFromPath(path)
		return cfg, err
	}
	cfg, found, err := config.Load()
	if err != nil {
		return nil, err
	}
	if found != "" {
		log.Printf("Using config %s", found)
	}
	return cfg, nil
}
