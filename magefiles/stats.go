//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// sourceRoots are the directories holding the complaints packages.
var sourceRoots = []string{"cmd", "internal", "pkg"}

// docFiles are the Markdown documents counted by Stats.
var docFiles = []string{"README.md", "SPEC_FULL.md", "DESIGN.md"}

// pkgStats holds the line counts of one package directory.
type pkgStats struct {
	Prod int `json:"prod"`
	Test int `json:"test"`
}

// Stats prints one JSON record with Go lines per package (production and
// test) and the word count of each design document.
func Stats() error {
	pkgs := map[string]*pkgStats{}
	for _, root := range sourceRoots {
		if err := countPackageLines(root, pkgs); err != nil {
			return err
		}
	}

	var total pkgStats
	for _, ps := range pkgs {
		total.Prod += ps.Prod
		total.Test += ps.Test
	}

	docs := map[string]int{}
	for _, name := range docFiles {
		words, err := countWordsInFile(name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		docs[name] = words
	}

	record := struct {
		Packages map[string]*pkgStats `json:"packages"`
		Total    pkgStats             `json:"total"`
		Docs     map[string]int       `json:"doc_words"`
	}{pkgs, total, docs}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countPackageLines walks root and adds the lines of every .go file to the
// entry of its directory.
func countPackageLines(root string, pkgs map[string]*pkgStats) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, err := countLines(path)
		if err != nil {
			return fmt.Errorf("count %s: %w", path, err)
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		ps, ok := pkgs[dir]
		if !ok {
			ps = &pkgStats{}
			pkgs[dir] = ps
		}
		if strings.HasSuffix(path, "_test.go") {
			ps.Test += count
		} else {
			ps.Prod += count
		}
		return nil
	})
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return len(strings.FieldsFunc(string(data), unicode.IsSpace)), nil
}
