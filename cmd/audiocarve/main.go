package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve"
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/wavfile"
	"github.com/himanishpuri/AudioCarve/pkg/logger"
	"github.com/himanishpuri/AudioCarve/pkg/utils"
	"github.com/joho/godotenv"
)

// Global flags
var (
	configPath   string
	outputDir    string
	dbPath       string
	blockSize    int
	sampleRate   int
	bitDepth     int
	channels     int
	progress     int
	spectrograms bool
	specSeconds  int
	verbose      bool
)

func init() {
	// .env values feed the AUDIOCARVE_* lookups below; a missing file is fine
	_ = godotenv.Load()

	flag.StringVar(&configPath, "config", os.Getenv("AUDIOCARVE_CONFIG"), "Path to a YAML configuration file")
	flag.StringVar(&outputDir, "out", "", "Output directory (env: AUDIOCARVE_OUTPUT_DIR, default: "+audiocarve.DefaultOutputDir+")")
	flag.StringVar(&dbPath, "db", "", "SQLite catalog of scans (env: AUDIOCARVE_DB_PATH, default: disabled)")
	flag.IntVar(&blockSize, "block", audiocarve.DefaultBlockSize, "Analysis block size in bytes")
	flag.IntVar(&sampleRate, "rate", audiocarve.DefaultSampleRate, "Sample rate written to WAV headers")
	flag.IntVar(&bitDepth, "bits", audiocarve.DefaultBitDepth, "Bit depth written to WAV headers")
	flag.IntVar(&channels, "channels", audiocarve.DefaultChannels, "Channel count written to WAV headers")
	flag.IntVar(&progress, "progress", audiocarve.DefaultProgressEvery, "Print progress every N blocks")
	flag.BoolVar(&spectrograms, "spectrogram", false, "Render a PNG spectrogram for each extracted run")
	flag.IntVar(&specSeconds, "spectrogram-seconds", audiocarve.DefaultSpectrogramSeconds, "Seconds of audio per spectrogram")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if verbose {
		logger.SetLevel(logger.DEBUG)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "scan":
		handleScan(args[1:])
	case "list":
		handleList()
	case "delete":
		handleDelete(args[1:])
	case "inspect":
		handleInspect(args[1:])
	case "help":
		printUsage()
	default:
		// audiocarve <image> [output_dir]
		handleScan(args)
	}
}

// resolveOptions layers configuration: defaults, YAML file, environment,
// explicit flags.
func resolveOptions() ([]audiocarve.Option, error) {
	var opts []audiocarve.Option

	if configPath != "" {
		fileOpts, err := audiocarve.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	if v := os.Getenv("AUDIOCARVE_OUTPUT_DIR"); v != "" {
		opts = append(opts, audiocarve.WithOutputDir(v))
	}
	if v := os.Getenv("AUDIOCARVE_DB_PATH"); v != "" {
		opts = append(opts, audiocarve.WithDBPath(v))
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["out"] {
		opts = append(opts, audiocarve.WithOutputDir(outputDir))
	}
	if set["db"] {
		opts = append(opts, audiocarve.WithDBPath(dbPath))
	}
	if set["block"] {
		opts = append(opts, audiocarve.WithBlockSize(blockSize))
	}
	if set["progress"] {
		opts = append(opts, audiocarve.WithProgressEvery(progress))
	}
	if set["spectrogram"] || set["spectrogram-seconds"] {
		opts = append(opts, audiocarve.WithSpectrograms(spectrograms, specSeconds))
	}
	opts = append(opts, func(c *audiocarve.Config) {
		if set["rate"] {
			c.SampleRate = sampleRate
		}
		if set["bits"] {
			c.BitDepth = bitDepth
		}
		if set["channels"] {
			c.Channels = channels
		}
	})

	return opts, nil
}

// positionalOptions maps `<image> [output_dir]` onto options. Positional
// arguments win over every other source.
func positionalOptions(args []string) []audiocarve.Option {
	var opts []audiocarve.Option
	if len(args) > 0 {
		opts = append(opts, audiocarve.WithImagePath(args[0]))
	}
	if len(args) > 1 {
		opts = append(opts, audiocarve.WithOutputDir(args[1]))
	}
	return opts
}

func handleScan(args []string) {
	log := logger.GetLogger()

	opts, err := resolveOptions()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		log.Errorf("Configuration failed: %v", err)
		os.Exit(1)
	}

	opts = append(opts, positionalOptions(args)...)

	cfg := audiocarve.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.ImagePath == "" {
		fmt.Println("Usage: audiocarve <image.dmg> [output_dir]")
		fmt.Println("")
		fmt.Println("Or set image and output_dir in a YAML file passed with -config")
		os.Exit(1)
	}

	svc, err := audiocarve.NewService(opts...)
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := svc.Scan(ctx)
	if err != nil {
		switch {
		case errors.Is(err, audiocarve.ErrImageNotFound):
			fmt.Printf("❌ Error: %v\n", err)
		case errors.Is(err, context.Canceled):
			fmt.Println("\n⚠️  Scan interrupted")
		default:
			fmt.Printf("\n❌ Scan failed: %v\n", err)
		}
		log.Errorf("Scan failed: %v", err)
		svc.Close()
		os.Exit(1)
	}

	outDir := utils.ExpandHome(cfg.OutputDir)

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("DONE!")
	fmt.Printf("Files saved in: %s\n", outDir)
	if report.ScanID != "" {
		fmt.Printf("Scan ID: %s\n", report.ScanID)
	}
	fmt.Println()
	fmt.Println("Open the .wav files in any audio player.")
	fmt.Println("If the audio sounds distorted, import the .raw files into Audacity")
	fmt.Println("with different parameters (e.g. 24-bit instead of 16-bit).")
}

// openCatalog builds a service for catalog-only commands. It exits when no
// catalog is configured.
func openCatalog() audiocarve.Service {
	opts, err := resolveOptions()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	cfg := audiocarve.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.DBPath == "" {
		fmt.Println("Error: no catalog configured (use -db or AUDIOCARVE_DB_PATH)")
		os.Exit(1)
	}

	svc, err := audiocarve.NewService(opts...)
	if err != nil {
		fmt.Printf("❌ Failed to open catalog: %v\n", err)
		logger.GetLogger().Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	return svc
}

func handleList() {
	log := logger.GetLogger()

	svc := openCatalog()
	defer svc.Close()

	scans, err := svc.ListScans()
	if err != nil {
		fmt.Printf("❌ Failed to list scans: %v\n", err)
		log.Errorf("ListScans failed: %v", err)
		svc.Close()
		os.Exit(1)
	}

	if len(scans) == 0 {
		fmt.Println("\n📭 No scans in catalog")
		return
	}

	fmt.Printf("\n📚 Found %d scan(s):\n\n", len(scans))
	for i, scan := range scans {
		fmt.Printf("%d. %s (%s) - %s\n", i+1, scan.ImagePath, humanize.IBytes(uint64(scan.ImageSize)), humanize.Time(scan.StartedAt))
		fmt.Printf("   ID: %s\n", scan.ID)
		if scan.FinishedAt.IsZero() {
			fmt.Println("   Status: incomplete")
		}
		c := scan.Counts
		fmt.Printf("   Blocks: %d (empty %d, silence %d, noise %d, audio %d)\n",
			scan.BlocksScanned, c.Empty, c.Silence, c.Noise, c.Audio)

		recs, err := svc.ListRuns(scan.ID)
		if err != nil {
			log.Warnf("Failed to list runs for scan %s: %v", scan.ID, err)
			continue
		}
		for _, r := range recs {
			fmt.Printf("   ▶ Run %d: blocks %d-%d, %s, score %.2f, flatness %.3f\n",
				r.Ordinal, r.StartBlock, r.EndBlock, humanize.IBytes(uint64(r.Size)), r.Score, r.Flatness)
			fmt.Printf("     %s\n", r.WavPath)
		}
		fmt.Println()
	}
	log.Infof("Listed %d scans", len(scans))
}

func handleDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: audiocarve -db <catalog> delete <scan-id>")
		os.Exit(1)
	}
	scanID := args[0]

	svc := openCatalog()
	defer svc.Close()

	if err := svc.DeleteScan(scanID); err != nil {
		if errors.Is(err, audiocarve.ErrScanNotFound) {
			fmt.Printf("❌ Scan %s not found\n", scanID)
		} else {
			fmt.Printf("❌ Failed to delete scan: %v\n", err)
		}
		logger.GetLogger().Errorf("DeleteScan %s failed: %v", scanID, err)
		svc.Close()
		os.Exit(1)
	}
	fmt.Printf("🗑️  Deleted scan %s (extracted files were kept)\n", scanID)
}

func handleInspect(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: audiocarve inspect <file.wav>")
		os.Exit(1)
	}

	info, err := wavfile.Inspect(args[0])
	if err != nil {
		fmt.Printf("❌ %s: %v\n", args[0], err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", args[0])
	fmt.Printf("   Format:    %s\n", info.Format())
	fmt.Printf("   RIFF size: %d\n", info.RIFFSize)
	fmt.Printf("   Data size: %d (%s)\n", info.DataSize, humanize.IBytes(uint64(info.DataSize)))
	fmt.Printf("   Duration:  %v\n", info.Duration)
}

func printUsage() {
	fmt.Println("AudioCarve - recover raw PCM audio from disk images")
	fmt.Println("\nGlobal Options:")
	flag.PrintDefaults()
	fmt.Println("\nUsage:")
	fmt.Println("  audiocarve [global-options] <image> [output_dir]")
	fmt.Println("  audiocarve [global-options] scan <image> [output_dir]")
	fmt.Println("  audiocarve [global-options] list")
	fmt.Println("  audiocarve [global-options] delete <scan-id>")
	fmt.Println("  audiocarve inspect <file.wav>")
	fmt.Println("\nExamples:")
	fmt.Println("  audiocarve /Volumes/CARD/P_BIANCA.dmg ~/Desktop/recovered_audio")
	fmt.Println("  audiocarve -db carve.sqlite3 -spectrogram scan card.img out/")
	fmt.Println("  audiocarve -db carve.sqlite3 list")
}
