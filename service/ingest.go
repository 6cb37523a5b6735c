// Package service provides the file-ingestion pipeline the build CLI
// command drives: glob expansion, shingling, bounded-concurrency sketch
// construction, and insertion into an lsh.Index.
package service

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/ludo-technologies/minhashlsh/domain"
	"github.com/ludo-technologies/minhashlsh/internal/config"
	"github.com/ludo-technologies/minhashlsh/lsh"
	"github.com/ludo-technologies/minhashlsh/minhash"
)

// DefaultShingleSize is the word-shingle window used to turn file
// contents into minhash elements when the caller does not override it.
const DefaultShingleSize = 4

// ExpandGlobs resolves a list of doublestar patterns (which may also be
// plain file paths) into a deduplicated list of regular file paths, in
// pattern order and, within a pattern, in the order the glob returns its
// matches. The list is not sorted as a whole; directories are skipped.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, domain.NewIOError("invalid glob pattern "+pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, domain.NewIOError("cannot stat "+m, err)
			}
			if info.IsDir() {
				continue
			}
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// Shingle splits text on whitespace and returns the sliding window of
// word n-grams of the given size, each joined with a single space. A
// document shorter than size yields one shingle spanning the whole text.
func Shingle(text string, size int) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}
	if len(fields) <= size {
		return []string{strings.Join(fields, " ")}
	}

	shingles := make([]string, 0, len(fields)-size+1)
	for i := 0; i+size <= len(fields); i++ {
		shingles = append(shingles, strings.Join(fields[i:i+size], " "))
	}
	return shingles
}

// ShingleFile reads path and returns its word shingles.
func ShingleFile(path string, size int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewIOError("failed to open "+path, err)
	}
	defer f.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte(' ')
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewIOError("failed to read "+path, err)
	}
	return Shingle(sb.String(), size), nil
}

// BuildSketch builds a minhash.Sketch over tokens.
func BuildSketch(tokens []string, cfg config.IndexConfig) (*minhash.Sketch, error) {
	sketch, err := minhash.New(cfg.NumPerm, cfg.Seed)
	if err != nil {
		return nil, err
	}
	for _, tok := range tokens {
		sketch.Update(tok)
	}
	return sketch, nil
}

// FileSketch pairs an ingested file with its key and computed sketch.
// Key defaults to a random UUID; Path records which file produced it
// for reporting.
type FileSketch struct {
	Key    string
	Path   string
	Sketch *minhash.Sketch
}

// IngestFiles builds one sketch per path, fanning sketch construction
// out across bounded goroutines (capped at GOMAXPROCS) while index
// mutation below is left to the caller to serialize. A file that fails
// to read or shingle is skipped and its error aggregated into the
// returned error via multierr rather than aborting the whole batch;
// callers may still receive a partial, usable result slice alongside a
// non-nil error.
func IngestFiles(paths []string, cfg config.IndexConfig, shingleSize int, progress *BuildProgress) ([]FileSketch, error) {
	p := pool.NewWithResults[ingestOutcome]().WithMaxGoroutines(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		path := path
		p.Go(func() ingestOutcome {
			tokens, err := ShingleFile(path, shingleSize)
			if err != nil {
				return ingestOutcome{path: path, err: err}
			}
			sketch, err := BuildSketch(tokens, cfg)
			if err != nil {
				return ingestOutcome{path: path, err: err}
			}
			return ingestOutcome{
				result: FileSketch{Key: uuid.NewString(), Path: path, Sketch: sketch},
			}
		})
	}

	outcomes := p.Wait()

	var results []FileSketch
	var errs error
	for _, o := range outcomes {
		if progress != nil {
			progress.Add(1)
		}
		if o.err != nil {
			errs = multierr.Append(errs, o.err)
			continue
		}
		results = append(results, o.result)
	}
	if progress != nil {
		progress.Finish()
	}
	if errs != nil {
		errs = domain.NewIngestError("one or more files failed to ingest", errs)
	}
	return results, errs
}

type ingestOutcome struct {
	path   string
	err    error
	result FileSketch
}

// IndexFiles runs IngestFiles and inserts every successful sketch into
// idx under the key toKey returns for it. Index mutation is serialized here since
// lsh.Index.Insert already takes an exclusive lock; concurrency gains
// only from the sketch-construction fan-out in IngestFiles.
func IndexFiles[K comparable](idx *lsh.Index[K], toKey func(FileSketch) K, paths []string, cfg config.IndexConfig, shingleSize int, progress *BuildProgress) ([]FileSketch, error) {
	results, err := IngestFiles(paths, cfg, shingleSize, progress)
	for _, r := range results {
		if insertErr := idx.Insert(toKey(r), r.Sketch); insertErr != nil {
			err = multierr.Append(err, insertErr)
		}
	}
	return results, err
}
