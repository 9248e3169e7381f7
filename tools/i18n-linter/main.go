// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the translation catalogs for missing or orphaned
// message IDs. Message IDs are collected from the Go sources and from the
// help fields of the bundled actions map, then compared with the English
// catalog, which every other catalog must match.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Harlan22/kilu/internal/actionsmap"
	"github.com/Harlan22/kilu/util/mapst"
)

// Location stores the file and line number of a found string.
type Location struct {
	Filepath string
	Line     int
}

const (
	localesDir     = "internal/i18n/locales"
	primaryLocale  = "active.en.yaml"
	bundledMapPath = "internal/actionsmap/default.yaml"
)

// report is the outcome of one lint run.
type report struct {
	used         map[string]struct{}
	explicit     map[string]struct{}
	primary      map[string]struct{}
	orphaned     []string
	missing      map[string][]string
	broken       map[string]error
	untranslated map[string][]Location
}

func main() {
	os.Exit(run(".", os.Stdout))
}

// run lints the project at root and returns the process exit code.
func run(root string, w io.Writer) int {
	fmt.Fprintln(w, "🔍 Running i18n linter...")

	r, err := lint(root)
	if err != nil {
		fmt.Fprintf(w, "❌ %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "✅ Found %d message IDs used by sources and the actions map.\n", len(r.used))
	fmt.Fprintf(w, "✅ Loaded %d message IDs from %s.\n\n", len(r.primary), primaryLocale)

	fmt.Fprintln(w, "--- Orphaned IDs (in the primary catalog but never used) ---")
	if len(r.orphaned) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}
	for _, key := range r.orphaned {
		fmt.Fprintf(w, "  - Orphaned: %s\n", key)
	}

	fmt.Fprintln(w, "\n--- Missing IDs (in the primary catalog but not in others) ---")
	for _, file := range mapst.SortedKeys(r.broken) {
		fmt.Fprintf(w, "  - ❌ Error loading %s: %v\n", file, r.broken[file])
	}
	for _, file := range mapst.SortedKeys(r.missing) {
		fmt.Fprintf(w, "Checking %s:\n", file)
		if len(r.missing[file]) == 0 {
			fmt.Fprintln(w, "  ✨ All IDs present.")
		}
		for _, key := range r.missing[file] {
			fmt.Fprintf(w, "  - Missing: %s\n", key)
		}
	}

	fmt.Fprintln(w, "\n--- Used IDs absent from the primary catalog ---")
	undefined := r.undefined()
	if len(undefined) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}
	for _, key := range undefined {
		fmt.Fprintf(w, "  - Undefined: %s\n", key)
	}

	fmt.Fprintln(w, "\n--- Potentially untranslated strings ---")
	if len(r.untranslated) == 0 {
		fmt.Fprintln(w, "  ✨ None found.")
	}
	for _, literal := range mapst.SortedKeys(r.untranslated) {
		loc := r.untranslated[literal][0]
		fmt.Fprintf(w, "  - Potential: %q (found in %s:%d)\n", literal, loc.Filepath, loc.Line)
	}

	fmt.Fprintln(w, "\n--- Linter Finished ---")
	switch {
	case r.failed() || len(undefined) > 0:
		fmt.Fprintln(w, "❌ Found issues that need to be addressed.")
		return 1
	case len(r.orphaned) > 0:
		fmt.Fprintln(w, "⚠️  Found orphaned IDs. Please consider removing them.")
	default:
		fmt.Fprintln(w, "✅ All translation files are consistent!")
	}
	return 0
}

func lint(root string) (*report, error) {
	used, explicit, err := findUsedKeys(root)
	if err != nil {
		return nil, fmt.Errorf("finding used IDs: %w", err)
	}
	mapKeys, err := actionsMapKeys(filepath.Join(root, bundledMapPath))
	if err != nil {
		return nil, fmt.Errorf("loading the actions map: %w", err)
	}
	for _, k := range mapKeys {
		used[k] = struct{}{}
		explicit[k] = struct{}{}
	}

	dir := filepath.Join(root, localesDir)
	primary, err := loadKeysFromLocale(filepath.Join(dir, primaryLocale))
	if err != nil {
		return nil, fmt.Errorf("loading primary locale %s: %w", primaryLocale, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("finding locale files: %w", err)
	}

	r := &report{
		used:     used,
		explicit: explicit,
		primary:  primary,
		missing:  map[string][]string{},
		broken:   map[string]error{},
	}
	r.orphaned = mapst.SortedKeys(mapst.Filter(primary, func(key string, _ struct{}) bool {
		_, ok := used[key]
		return !ok
	}))

	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			r.broken[file] = err
			continue
		}
		missing := []string{}
		for key := range primary {
			if _, ok := keys[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		r.missing[file] = missing
	}

	r.untranslated, err = findUntranslatedStrings(root, primary)
	if err != nil {
		return nil, fmt.Errorf("finding untranslated strings: %w", err)
	}
	return r, nil
}

func (r *report) failed() bool {
	if len(r.broken) > 0 {
		return true
	}
	for _, keys := range r.missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

// undefined lists the IDs passed to a translation call or named by the
// actions map that the primary catalog lacks.
func (r *report) undefined() []string {
	var out []string
	for key := range r.explicit {
		if _, ok := r.primary[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// usedKeyRe matches the ways kilu references a message ID: i18n.T and
// translator calls, newError(kind, "id") and dotted string literals.
var usedKeyRe = regexp.MustCompile(`\b(?:T|translate)\("([^"]+)"|newError\([^,()]+,\s*"([^"]+)"|"([a-z_]+\.[a-z_.]+)"`)

// findUsedKeys scans the non-test Go files below root. explicit holds the
// IDs passed directly to a translation call; used adds every dotted
// literal, which may name an ID indirectly.
func findUsedKeys(root string) (used, explicit map[string]struct{}, err error) {
	used = make(map[string]struct{})
	explicit = make(map[string]struct{})
	err = walkSources(root, func(path, content string) {
		for _, m := range usedKeyRe.FindAllStringSubmatch(content, -1) {
			switch {
			case m[1] != "":
				explicit[m[1]] = struct{}{}
				used[m[1]] = struct{}{}
			case m[2] != "":
				explicit[m[2]] = struct{}{}
				used[m[2]] = struct{}{}
			case m[3] != "":
				used[m[3]] = struct{}{}
			}
		}
	})
	return used, explicit, err
}

// actionsMapKeys returns the help IDs of the actions map at path, or none
// when the file does not exist.
func actionsMapKeys(path string) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	doc, err := actionsmap.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.HelpKeys(), nil
}

var (
	callRe      = regexp.MustCompile(`([a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	keyRe       = regexp.MustCompile(`^[a-z_]+(\.[a-z_]+)*$`)
	allCapsRe   = regexp.MustCompile(`^[A-Z_]+$`)
	formatOnlyRe = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
)

// ignoredCalls never produce translated output.
var ignoredCalls = map[string]struct{}{
	"Print": {}, "Println": {}, "Printf": {}, "Fatal": {}, "Fatalf": {},
	"WriteString": {}, "Debugf": {}, "Errorf": {}, "MustCompile": {},
	"Getenv": {}, "Setenv": {}, "Lookup": {}, "Sprintf": {}, "Fprintf": {},
}

// findUntranslatedStrings flags string literals passed to calls that look
// like user-facing text.
func findUntranslatedStrings(root string, known map[string]struct{}) (map[string][]Location, error) {
	untranslated := make(map[string][]Location)
	err := walkSources(root, func(path, content string) {
		for i, line := range strings.Split(content, "\n") {
			for _, m := range callRe.FindAllStringSubmatch(line, -1) {
				funcName, literal := m[2], m[3]
				if _, skip := ignoredCalls[funcName]; skip {
					continue
				}
				if _, ok := known[literal]; ok {
					continue
				}
				switch {
				case keyRe.MatchString(literal),
					len(literal) < 4,
					strings.HasPrefix(literal, "http"),
					strings.HasPrefix(literal, "2006-"),
					allCapsRe.MatchString(literal),
					strings.ContainsAny(literal, "/\\"),
					formatOnlyRe.MatchString(literal) && !strings.Contains(literal, " "):
					continue
				}
				untranslated[literal] = append(untranslated[literal], Location{Filepath: path, Line: i + 1})
			}
		}
	})
	return untranslated, err
}

// walkSources calls fn for every non-test Go file below root, skipping the
// tools and reference directories.
func walkSources(root string, fn func(path, content string)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fn(path, string(content))
		return nil
	})
}

// loadKeysFromLocale reads a catalog and returns its flattened IDs.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into dot-separated IDs. Plural forms
// (maps holding one/other) count as a single ID.
func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		if _, plural := v["other"]; plural && prefix != "" {
			keys[prefix] = struct{}{}
			return
		}
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	case []any:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
