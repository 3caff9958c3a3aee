package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/fixer"
	"github.com/gnoverse/cstfix/formatter"
	"github.com/gnoverse/cstfix/internal/config"
	"github.com/gnoverse/cstfix/runner"
)

var (
	write      bool
	strict     bool
	jsonOutput bool
	watch      bool
	jobs       int
	cacheDir   string
	noProgress bool
)

var errProblems = errors.New("problems found")

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run the rules over files and directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		r, err := newRunner(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		if watch {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), r, args)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runRules(ctx, cmd.OutOrStdout(), r, args, jsonOutput)
	},
}

func init() {
	runCmd.Flags().BoolVarP(&write, "write", "w", false, "Write changes back to the files")
	runCmd.Flags().BoolVar(&strict, "strict", false, "Abort a file on the first modifier failure")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	runCmd.Flags().BoolVar(&watch, "watch", false, "Keep running and re-apply the rules to files as they change")
	runCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Files processed in parallel (default: number of CPUs)")
	runCmd.Flags().StringVar(&cacheDir, "cache", "", "Directory for the cache of unchanged files")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not draw a progress bar")
}

func newRunner(cfg *config.Config, progress io.Writer) (*runner.Runner, error) {
	parser, err := cfg.Parser(logger)
	if err != nil {
		return nil, err
	}
	opts := []fixer.Option{fixer.WithLogger(logger)}
	if strict {
		opts = append(opts, fixer.WithStrict(true))
	}
	q, err := cfg.Build(parser, opts...)
	if err != nil {
		return nil, err
	}

	ropts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithJobs(jobs),
		runner.WithWrite(write),
		runner.WithExtensions(cfg.Extensions()...),
		runner.WithInclude(cfg.Include...),
		runner.WithExclude(cfg.Exclude...),
	}
	if !noProgress && !jsonOutput && !watch {
		ropts = append(ropts, runner.WithProgress(progress))
	}
	if cacheDir != "" {
		cache, err := runner.NewCache(cacheDir)
		if err != nil {
			return nil, err
		}
		ropts = append(ropts, runner.WithCache(cache, cfg.Key()))
	}
	return runner.New(q, ropts...), nil
}

// runRules processes paths and prints every result. It returns errProblems
// when a file failed or a modifier reported an error.
func runRules(ctx context.Context, out io.Writer, r *runner.Runner, paths []string, isJSON bool) error {
	results, err := r.ProcessPaths(ctx, paths)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s", timeout)
	}

	var fileErrs []*runner.FileError
	for _, e := range unwrapAll(err) {
		var ferr *runner.FileError
		if errors.As(e, &ferr) {
			fileErrs = append(fileErrs, ferr)
		} else if e != nil {
			return e
		}
	}

	if isJSON {
		if err := printJSON(out, results, fileErrs); err != nil {
			return err
		}
	} else {
		for _, ferr := range fileErrs {
			fmt.Fprint(out, formatter.FormatError(ferr.Path, ferr.Err))
		}
		for _, res := range results {
			fmt.Fprint(out, formatter.FormatResult(res))
		}
		fmt.Fprint(out, formatter.Summary(results))
	}

	if len(fileErrs) > 0 {
		return errProblems
	}
	for _, res := range results {
		if len(res.Errors) > 0 {
			return errProblems
		}
	}
	return nil
}

func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

type jsonResult struct {
	Filename string        `json:"filename"`
	Changed  bool          `json:"changed"`
	Matches  int           `json:"matches"`
	Diff     string        `json:"diff,omitempty"`
	Problems []jsonProblem `json:"problems,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type jsonProblem struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

func printJSON(out io.Writer, results []*fixer.Result, fileErrs []*runner.FileError) error {
	list := make([]jsonResult, 0, len(results)+len(fileErrs))
	for _, res := range results {
		jr := jsonResult{
			Filename: res.Filename,
			Changed:  res.Changed(),
			Matches:  res.Matches,
		}
		if !res.Diff.Empty() {
			jr.Diff = res.Diff.Unified(res.Filename, res.Filename)
		}
		for _, p := range formatter.Problems(res) {
			jr.Problems = append(jr.Problems, jsonProblem{Severity: p.Severity, Rule: p.Rule, Line: p.Line, Message: p.Message})
		}
		list = append(list, jr)
	}
	for _, ferr := range fileErrs {
		list = append(list, jsonResult{Filename: ferr.Path, Error: ferr.Err.Error()})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

func runWatch(ctx context.Context, out io.Writer, r *runner.Runner, paths []string) error {
	if err := runRules(ctx, out, r, paths, false); err != nil && !errors.Is(err, errProblems) {
		return err
	}
	var dirs []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			dirs = append(dirs, p)
		}
	}
	if len(dirs) == 0 {
		return errors.New("--watch needs at least one directory")
	}
	return r.Watch(ctx, dirs, func(path string, res *fixer.Result, err error) {
		if err != nil {
			logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
			fmt.Fprint(out, formatter.FormatError(path, err))
			return
		}
		fmt.Fprint(out, formatter.FormatResult(res))
	})
}
