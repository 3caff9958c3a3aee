// Package runner executes a query over files and directories.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnoverse/cstfix/diff"
	"github.com/gnoverse/cstfix/fixer"
)

// FileError is a file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// Runner runs one query over many files.
type Runner struct {
	query      *fixer.Query
	logger     *zap.Logger
	jobs       int
	write      bool
	extensions []string
	include    []string
	exclude    []string
	cache      *Cache
	cacheKey   string
	progress   io.Writer
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithJobs bounds how many files are processed at once.
func WithJobs(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.jobs = n
		}
	}
}

// WithWrite makes the runner write modified files back.
func WithWrite(write bool) Option {
	return func(r *Runner) { r.write = write }
}

// WithExtensions limits directory walks to files with these extensions.
func WithExtensions(exts ...string) Option {
	return func(r *Runner) { r.extensions = exts }
}

// WithInclude keeps only walked files matching one of the globs.
func WithInclude(globs ...string) Option {
	return func(r *Runner) { r.include = globs }
}

// WithExclude drops files matching one of the globs.
func WithExclude(globs ...string) Option {
	return func(r *Runner) { r.exclude = globs }
}

// WithCache skips files the cache records as unchanged under key. The key
// should identify the rule set.
func WithCache(c *Cache, key string) Option {
	return func(r *Runner) { r.cache, r.cacheKey = c, key }
}

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

func New(q *fixer.Query, opts ...Option) *Runner {
	r := &Runner{
		query:  q,
		logger: zap.NewNop(),
		jobs:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Files expands paths into the sorted list of files to process. Files named
// directly are kept unless excluded; directories are walked, skipping hidden
// directories.
func (r *Runner) Files(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", root, err)
		}
		if !info.IsDir() {
			if !matchAny(r.exclude, root) {
				add(root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if r.accept(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	slices.Sort(files)
	return files, nil
}

func (r *Runner) accept(p string) bool {
	if len(r.extensions) > 0 && !slices.Contains(r.extensions, strings.ToLower(filepath.Ext(p))) {
		return false
	}
	if len(r.include) > 0 && !matchAny(r.include, p) {
		return false
	}
	return !matchAny(r.exclude, p)
}

// matchAny matches p against globs. A glob without a slash is matched
// against the base name.
func matchAny(globs []string, p string) bool {
	name := filepath.ToSlash(p)
	for _, g := range globs {
		target := name
		if !strings.Contains(g, "/") {
			target = path.Base(name)
		}
		if ok, err := doublestar.Match(g, target); err == nil && ok {
			return true
		}
	}
	return false
}

// ProcessFile runs the query on one file, writing it back when the runner
// writes and the content changed.
func (r *Runner) ProcessFile(ctx context.Context, p string) (*fixer.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &FileError{Path: p, Err: err}
	}
	if r.cache != nil && r.cache.Unchanged(p, r.cacheKey, data) {
		r.logger.Debug("cache hit", zap.String("file", p))
		text := string(data)
		return &fixer.Result{Filename: p, Original: text, Modified: text, Diff: &diff.Result{}}, nil
	}

	res, err := r.query.Execute(string(data), p)
	if err != nil {
		return nil, &FileError{Path: p, Err: err}
	}
	r.logger.Debug("file processed",
		zap.String("file", p),
		zap.Int("matches", res.Matches),
		zap.Bool("changed", res.Changed()),
	)

	if r.cache != nil && !res.Changed() && len(res.Errors) == 0 && len(res.Warnings) == 0 {
		r.cache.Set(p, r.cacheKey, data)
	}
	if r.write && res.Changed() {
		if err := writeFile(p, res.Modified); err != nil {
			return res, &FileError{Path: p, Err: err}
		}
		r.logger.Info("file written", zap.String("file", p))
	}
	return res, nil
}

func writeFile(p, content string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content), info.Mode().Perm())
}

// ProcessPaths expands paths and processes the files in parallel. Results
// come back in file order. Files that fail are reported together in the
// returned error while the rest still produce results. Once ctx is done no
// new file is started and ctx's error is returned.
func (r *Runner) ProcessPaths(ctx context.Context, paths []string) ([]*fixer.Result, error) {
	files, err := r.Files(paths)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if r.progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(r.progress),
			progressbar.OptionSetDescription("cstfix"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]*fixer.Result, len(files))
	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(r.jobs)
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.ProcessFile(ctx, f)
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				r.logger.Error("Error processing file", zap.String("file", f), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}
	if r.cache != nil {
		if err := r.cache.Save(); err != nil {
			r.logger.Warn("cache not saved", zap.Error(err))
		}
	}
	if err := ctx.Err(); err != nil {
		return compact(results), err
	}
	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return compact(results), errors.Join(errs...)
}

func compact(results []*fixer.Result) []*fixer.Result {
	return slices.DeleteFunc(results, func(r *fixer.Result) bool { return r == nil })
}
