// Command convert turns CSV files into Excel workbooks from the command line.
//
// Usage:
//
//	convert [-dir DIR] [-out DIR] [-fill VALUE] [-suggest] [file.csv ...]
//
// Every file is read with the same encoding fallback as the web UI. Files
// that cannot be read are reported and skipped; the exit status is 1 when
// any file failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/JonMunkholm/csvconvert/internal/config"
	"github.com/JonMunkholm/csvconvert/internal/core"
	"github.com/JonMunkholm/csvconvert/internal/logging"
	"github.com/joho/godotenv"
)

type options struct {
	dir     string
	out     string
	fill    string
	suggest bool
	verbose bool
	files   []string
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", "", "convert every .csv file in this directory")
	flag.StringVar(&opts.out, "out", ".", "directory for the .xlsx files")
	flag.StringVar(&opts.fill, "fill", core.DefaultFillValue, "value for empty cells (empty leaves them blank)")
	flag.BoolVar(&opts.suggest, "suggest", false, "rename placeholder columns to their suggested names")
	flag.BoolVar(&opts.verbose, "v", false, "log conversion details to stderr")
	flag.Parse()
	opts.files = flag.Args()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("configuration: "+err.Error()))
		os.Exit(2)
	}

	level := "warn"
	if opts.verbose {
		level = cfg.Logging.Level
	}
	slog.SetDefault(logging.New(os.Stderr, level, cfg.Logging.Format))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, cfg, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// run converts every input and returns the number of failed files.
func run(ctx context.Context, cfg *config.Config, opts options) (int, error) {
	paths, err := collectInputs(opts.dir, opts.files)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no .csv files given; pass file names or -dir")
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	svc, err := core.NewService(cfg)
	if err != nil {
		return 0, err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Converting %d file(s) to %s", len(paths), opts.out)))

	req := core.TransformRequest{
		FillMissing:      opts.fill != "",
		FillValue:        opts.fill,
		ApplySuggestions: opts.suggest,
	}

	names := newOutputNames(opts.out)
	converted, failed := 0, 0
	for start := 0; start < len(paths); start += cfg.Upload.MaxFiles {
		end := min(start+cfg.Upload.MaxFiles, len(paths))

		ok, bad, err := convertBatch(ctx, svc, paths[start:end], names, req)
		converted += ok
		failed += bad
		if err != nil {
			return failed, err
		}
	}

	fmt.Println(summaryStyle.Render(fmt.Sprintf("%d converted, %d failed", converted, failed)))
	return failed, nil
}

// convertBatch reads one batch through the service and writes a workbook
// for every file that could be read.
func convertBatch(ctx context.Context, svc *core.Service, paths []string, names *outputNames, req core.TransformRequest) (int, int, error) {
	var files []core.RawFile
	failed := 0
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			reportFailure(p, err.Error())
			failed++
			continue
		}
		files = append(files, core.RawFile{Name: p, Data: data})
	}
	if len(files) == 0 {
		return 0, failed, nil
	}

	results, err := svc.ConvertFiles(ctx, files)
	if err != nil {
		return 0, failed, err
	}

	converted := 0
	for _, res := range results {
		if !res.OK() {
			reportFailure(res.FileName, fmt.Sprintf("%s (Code: %s)", res.Error, res.Code))
			failed++
			continue
		}

		dest, err := writeExport(ctx, svc, res.Table.ID, names, req)
		svc.Discard(res.Table.ID)
		if err != nil {
			reportFailure(res.FileName, core.FormatUserError(err))
			failed++
			continue
		}

		converted++
		fmt.Printf("%s %s -> %s %s\n",
			successStyle.Render("ok"),
			res.FileName,
			dest,
			mutedStyle.Render(fmt.Sprintf("(%s, %d rows, %d columns)", res.Table.Encoding, res.Table.Rows, len(res.Table.Columns))),
		)
		if req.ApplySuggestions {
			for _, col := range res.Table.Columns {
				if sg := col.Suggestion; sg.Placeholder && sg.Suggested != sg.Column {
					fmt.Println(mutedStyle.Render(fmt.Sprintf("     %s -> %s", sg.Column, sg.Suggested)))
				}
			}
		}
	}

	return converted, failed, nil
}

// writeExport renders a session with req applied and writes it under the
// next free output name.
func writeExport(ctx context.Context, svc *core.Service, id string, names *outputNames, req core.TransformRequest) (string, error) {
	res, err := svc.ExportTransformed(ctx, id, req)
	if err != nil {
		return "", err
	}
	dest := names.claim(res.FileName)
	if err := os.WriteFile(dest, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// outputNames hands out workbook paths in one output directory. Inputs
// from different directories can share a base name; later ones get a
// numeric suffix (x.xlsx, x-2.xlsx, x-3.xlsx) instead of overwriting.
type outputNames struct {
	dir   string
	taken map[string]bool
}

func newOutputNames(dir string) *outputNames {
	return &outputNames{dir: dir, taken: make(map[string]bool)}
}

// claim reserves name, or the first suffixed variant not yet handed out.
// Names compare case-insensitively so the result is safe on filesystems
// that fold case.
func (o *outputNames) claim(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 2; o.taken[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
	o.taken[strings.ToLower(candidate)] = true
	return filepath.Join(o.dir, candidate)
}

func reportFailure(name, msg string) {
	fmt.Printf("%s %s: %s\n", errorStyle.Render("failed"), name, msg)
}

// collectInputs lists the explicit files followed by the .csv files of dir.
func collectInputs(dir string, files []string) ([]string, error) {
	paths := append([]string(nil), files...)
	if dir == "" {
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
