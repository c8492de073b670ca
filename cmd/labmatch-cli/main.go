package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"yashubustudio/labmatch/labmatch"
)

const defaultConfigPath = "config.json"

type cliOptions struct {
	configPath string
	apiURL     string
	rootURL    string
	prompt     string
	resumePath string
	outputPath string
	outputDir  string
	health     bool
	initConfig bool
	jsonOut    bool
	stdout     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("labmatch-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("labmatch-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json or config.yaml (default: ./config.json)")
	flag.StringVar(&opts.apiURL, "api", "", "Backend base URL (overrides config and LABMATCH_API_URL)")
	flag.StringVar(&opts.rootURL, "url", "", "Department faculty page to scan")
	flag.StringVar(&opts.prompt, "prompt", "", "Research interests sent with the scan")
	flag.StringVar(&opts.resumePath, "resume", "", "PDF resume whose summary is appended to --prompt")
	flag.StringVar(&opts.outputPath, "output", "", "CSV file to write professors to")
	flag.StringVar(&opts.outputDir, "output-dir", "", "Directory for professors_*.csv when --output is omitted")
	flag.BoolVar(&opts.health, "health", false, "Only check backend health and exit")
	flag.BoolVar(&opts.initConfig, "init-config", false, "Write the effective config (with a generated user id) to --config and exit")
	flag.BoolVar(&opts.jsonOut, "json", false, "Print the final session and cards as JSON")
	flag.BoolVar(&opts.stdout, "stdout", true, "Print a preview of the professors found")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --url URL [options]\n       %s --health\n\n", filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.apiURL = strings.TrimSpace(opts.apiURL)
	opts.rootURL = strings.TrimSpace(opts.rootURL)
	opts.resumePath = strings.TrimSpace(opts.resumePath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)

	if !opts.health && !opts.initConfig && opts.rootURL == "" {
		flag.Usage()
		return opts, errors.New("missing required --url")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := labmatch.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate --api: %w", err)
		}
	}
	cfg.EnsureUserID()

	if opts.initConfig {
		path := opts.configPath
		if path == "" {
			path = defaultConfigPath
		}
		if err := labmatch.SaveConfig(path, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println(path)
		return nil
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	client := labmatch.NewClient(cfg.APIURL, labmatch.WithTimeout(cfg.RequestTimeout()), labmatch.WithLogger(logger))
	logger.Printf("backend %s", client.BaseURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if opts.health {
		return checkHealth(ctx, client, cfg.RequestTimeout())
	}

	prompt := opts.prompt
	if opts.resumePath != "" {
		summary, err := readResume(ctx, client, opts.resumePath, cfg.RequestTimeout())
		if err != nil {
			return err
		}
		prompt = strings.TrimSpace(prompt + "\n\n" + summary)
	}

	st, err := scan(ctx, client, cfg, opts.rootURL, prompt, logger)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	sum := st.Summary()
	logger.Printf("scan finished: %d pages, %d professors seen, %d cards", sum.PagesScanned, sum.ProfessorsFound, len(st.Cards))
	if st.Notice != "" {
		logger.Printf("session %s: %s", st.Session.Status, st.Notice)
	}

	if opts.outputPath != "" || opts.outputDir != "" {
		outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
		if err != nil {
			return err
		}
		if err := writeProfessorCSV(outputPath, st.Cards); err != nil {
			return err
		}
		logger.Printf("wrote %d professors to %s", len(st.Cards), outputPath)
	}
	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(labmatch.SessionResponse{Session: st.Session, Cards: st.Cards})
	}
	if opts.stdout {
		printSummary(st.Cards)
	}
	return nil
}

func checkHealth(ctx context.Context, client *labmatch.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	h := client.CheckHealth(ctx)
	fmt.Println(h)
	if h != labmatch.HealthHealthy {
		return fmt.Errorf("backend is %s", h)
	}
	return nil
}

func readResume(ctx context.Context, client *labmatch.Client, path string, timeout time.Duration) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := client.ParseResume(ctx, path, f)
	if err != nil {
		return "", fmt.Errorf("parse resume: %w", err)
	}
	return out.Summary, nil
}

// scan runs one discovery session to completion, logging feed rows as they
// arrive.
func scan(ctx context.Context, client *labmatch.Client, cfg labmatch.Config, rootURL, prompt string, logger *log.Logger) (labmatch.DiscoverState, error) {
	d := labmatch.NewDiscovery(client, labmatch.NewLikedStore(), cfg, logger)
	defer d.Close()

	finished := make(chan labmatch.DiscoverState, 1)
	failed := make(chan error, 1)
	var mu sync.Mutex
	printed := 0
	d.OnChange(func(st labmatch.DiscoverState) {
		mu.Lock()
		defer mu.Unlock()
		if printed > len(st.Events) {
			printed = 0
		}
		for _, ev := range st.Events[printed:] {
			if row, ok := labmatch.ClassifyRow(ev); ok {
				logger.Print(formatRow(row))
			}
		}
		printed = len(st.Events)
		switch st.Stage {
		case labmatch.StageCards, labmatch.StageNoResults:
			select {
			case finished <- st:
			default:
			}
		}
	})
	d.OnError(func(err error) {
		select {
		case failed <- err:
		default:
		}
	})

	startCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	defer cancel()
	if err := d.Start(startCtx, rootURL, prompt); err != nil {
		return labmatch.DiscoverState{}, err
	}
	select {
	case st := <-finished:
		return st, nil
	case err := <-failed:
		return labmatch.DiscoverState{}, err
	case <-ctx.Done():
		return labmatch.DiscoverState{}, ctx.Err()
	}
}

func formatRow(row labmatch.FeedRow) string {
	var b strings.Builder
	b.WriteString(row.Title)
	if row.Detail != "" {
		b.WriteString(" - ")
		b.WriteString(row.Detail)
	}
	if row.Badge != "" {
		b.WriteString(" [")
		b.WriteString(row.Badge)
		b.WriteString("]")
	}
	return b.String()
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("professors_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeProfessorCSV(path string, cards []labmatch.Professor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := []string{"id", "name", "title", "department", "school", "match", "url", "keywords", "summary"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range cards {
		match := ""
		if p.MatchScore != nil {
			match = strconv.Itoa(p.MatchPercent())
		}
		row := []string{
			p.ID,
			p.DisplayName(),
			p.Title,
			p.Department,
			p.School,
			match,
			p.PrimaryURL,
			strings.Join(p.TopKeywords(-1), "; "),
			p.CleanSummary(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

func printSummary(cards []labmatch.Professor) {
	fmt.Println()
	fmt.Println("==== Professors ====")
	if len(cards) == 0 {
		fmt.Println("No professors found")
		return
	}
	for i, p := range cards {
		fmt.Printf("%d. %s (%s) %s\n", i+1, p.DisplayName(), p.DisplayTitle(), p.MatchLabel())
		if p.Department != "" {
			fmt.Printf("    %s\n", p.Department)
		}
		if kw := p.TopKeywords(3); len(kw) > 0 {
			fmt.Printf("    %s\n", strings.Join(kw, ", "))
		}
		for _, l := range p.DisplayLinks() {
			fmt.Printf("    %s: %s\n", l.Label, l.URL)
		}
	}
}
