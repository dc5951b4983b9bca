// Package resources loads the shared, read-only resource bag a trained model
// directory ships alongside its processing units (spec.md §3 "Shared
// resources", §4.1): stem dictionaries, gazetteers, word-cluster tables, and
// stop-word lists. Once loaded the bag is immutable and safe to share across
// every processing unit and concurrent Parse call.
package resources

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/snipsco/snips-nlu-go/pkg/language"
	"github.com/snipsco/snips-nlu-go/pkg/model"
	"github.com/snipsco/snips-nlu-go/pkg/nluerrors"
)

// Resources is the immutable bag of shared, language-specific resources a
// model directory may ship.
type Resources struct {
	Language language.Language

	Stemmer Stemmer

	// Gazetteers maps a gazetteer name to its canonical-value -> surface-form
	// table, ready for pkg/entities/custom.NewGazetteer.
	Gazetteers map[string]map[string][]string

	// WordClusters maps a cluster-table name to a word -> cluster-id table.
	WordClusters map[string]map[string]string

	StopWords map[string]bool
}

// Load reads dir/metadata.json and every resource file it references.
func Load(dir string) (*Resources, error) {
	metaPath := filepath.Join(dir, "metadata.json")
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", metaPath, err)
	}

	var meta model.ResourcesMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", metaPath, err)
	}

	lang, err := language.Parse(meta.Language)
	if err != nil {
		return nil, nluerrors.Internal("resources metadata language", err)
	}

	res := &Resources{
		Language:     lang,
		Gazetteers:   make(map[string]map[string][]string),
		WordClusters: make(map[string]map[string]string),
	}

	stems := make(map[string]string)
	if meta.Stems != nil {
		stems, err = loadStems(filepath.Join(dir, *meta.Stems))
		if err != nil {
			return nil, err
		}
	}
	res.Stemmer = NewStemmer(stems)

	for _, name := range meta.Gazetteers {
		g, err := loadGazetteer(filepath.Join(dir, "gazetteers", name+".txt"))
		if err != nil {
			return nil, err
		}
		res.Gazetteers[name] = g
	}

	for _, name := range meta.WordClusters {
		c, err := loadWordCluster(filepath.Join(dir, "word_clusters", name+".tsv"))
		if err != nil {
			return nil, err
		}
		res.WordClusters[name] = c
	}

	if meta.StopWords {
		words, err := loadStopWords(filepath.Join(dir, "stop_words.txt"))
		if err != nil {
			return nil, err
		}
		res.StopWords = words
	}

	return res, nil
}

func loadStems(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stems file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	stems := make(map[string]string)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing stems file %s: %w", path, err)
		}
		stems[record[0]] = record[1]
	}
	return stems, nil
}

func loadGazetteer(path string) (map[string][]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	g := make(map[string][]string)
	for _, line := range lines {
		parts := strings.SplitN(line, "\t", 2)
		canonical := parts[0]
		if len(parts) == 1 {
			g[canonical] = append(g[canonical], canonical)
			continue
		}
		g[canonical] = append(g[canonical], strings.Split(parts[1], "|")...)
	}
	return g, nil
}

func loadWordCluster(path string) (map[string]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	c := make(map[string]string, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		c[parts[0]] = parts[1]
	}
	return c, nil
}

func loadStopWords(path string) (map[string]bool, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	words := make(map[string]bool, len(lines))
	for _, line := range lines {
		words[line] = true
	}
	return words, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return lines, nil
}
