package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chrisptang/jate/pkg/jate/eval"
	"github.com/chrisptang/jate/pkg/jate/internalerr"
	"github.com/chrisptang/jate/pkg/jate/reference"
	"github.com/chrisptang/jate/pkg/jate/stats"
)

// LoadGoldStandard reads one term per line. Blank lines and lines starting
// with # are skipped.
func LoadGoldStandard(path string) (*eval.GoldStandard, error) {
	var terms []string
	err := eachLine(path, func(_ int, line string) error {
		terms = append(terms, line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return eval.NewGoldStandard(terms), nil
}

// LoadReference reads a word frequency list. Each line holds a word and its
// count separated by whitespace, in either order.
func LoadReference(path string) (*reference.Table, error) {
	table := reference.NewTable(nil)
	err := eachLine(path, func(n int, line string) error {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%w: %s:%d: expected word and frequency", internalerr.ErrInvalidInput, path, n)
		}
		word, freq := fields[0], fields[1]
		f, err := strconv.ParseInt(freq, 10, 64)
		if err != nil {
			word, freq = fields[1], fields[0]
			if f, err = strconv.ParseInt(freq, 10, 64); err != nil {
				return fmt.Errorf("%w: %s:%d: no frequency in %q", internalerr.ErrInvalidInput, path, n, line)
			}
		}
		if f < 0 {
			return fmt.Errorf("%w: %s:%d: negative frequency", internalerr.ErrInvalidInput, path, n)
		}
		table.Add(word, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// LoadCorpus reads pre-segmented documents, one JSON object per line.
// Malformed lines are skipped with a warning.
func LoadCorpus(path string) ([]stats.Document, error) {
	var docs []stats.Document
	err := eachLine(path, func(n int, line string) error {
		var d stats.Document
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			slog.Warn("skipping malformed document", "path", path, "line", n, "error", err)
			return nil
		}
		if d.ID == "" {
			d.ID = strconv.Itoa(n)
		}
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no valid documents found in %s", internalerr.ErrInvalidInput, path)
	}
	return docs, nil
}

// LoadRecords reads pre-computed term statistics, one term per line:
//
//	term<TAB>ttf<TAB>df[<TAB>count,count,...]
//
// The optional last column lists the term's per-document frequencies.
func LoadRecords(path string) ([]stats.Record, error) {
	var recs []stats.Record
	err := eachLine(path, func(n int, line string) error {
		parts := strings.Split(line, "\t")
		if len(parts) < 3 || len(parts) > 4 {
			return fmt.Errorf("%w: %s:%d: expected 3 or 4 tab-separated columns", internalerr.ErrInvalidInput, path, n)
		}
		ttf, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s:%d: total frequency: %v", internalerr.ErrInvalidInput, path, n, err)
		}
		df, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s:%d: document frequency: %v", internalerr.ErrInvalidInput, path, n, err)
		}
		rec := stats.Record{Term: parts[0], TotalFrequency: ttf, DocumentFrequency: df}
		if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
			for _, c := range strings.Split(parts[3], ",") {
				v, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
				if err != nil {
					return fmt.Errorf("%w: %s:%d: document counts: %v", internalerr.ErrInvalidInput, path, n, err)
				}
				rec.DocumentCounts = append(rec.DocumentCounts, v)
			}
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// eachLine calls fn with every non-blank, non-comment line and its 1-based
// line number.
func eachLine(path string, fn func(n int, line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
