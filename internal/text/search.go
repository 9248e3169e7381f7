// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package text holds the searching helpers used by backend actions.
package text

import (
	"fmt"
	"os"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds the backtracking of a single match.
const MatchTimeout = time.Second

// Compile compiles a Perl/Python style pattern, lookarounds and
// backreferences included, with the match timeout set.
func Compile(pattern string, opts regexp2.RegexOptions) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// Search scans text for every non-overlapping match of pattern.
//
// Each match is reported as the matched text when pattern has no capture
// group, as the group when it has one, and as a []string of the groups
// otherwise. count limits the number of matches: 0 keeps them all, a
// negative count keeps the last ones. When exactly one match is requested
// it is returned alone instead of in a slice. No match yields nil.
func Search(pattern, text string, count int, multiline bool) (any, error) {
	opts := regexp2.None
	if multiline {
		opts |= regexp2.Multiline
	}
	re, err := Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	var matches []any
	m, err := re.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = re.FindNextMatch(m) {
		groups := m.Groups()
		switch len(groups) {
		case 1:
			matches = append(matches, m.String())
		case 2:
			matches = append(matches, groups[1].String())
		default:
			values := make([]string, 0, len(groups)-1)
			for _, g := range groups[1:] {
				values = append(values, g.String())
			}
			matches = append(matches, values)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	if count == 0 {
		return matches, nil
	}

	limit := min(len(matches), abs(count))
	if count < 0 {
		matches = matches[len(matches)-limit:]
	} else {
		matches = matches[:limit]
	}
	if abs(count) == 1 {
		return matches[0], nil
	}
	return matches, nil
}

// SearchFile runs Search over the content of the file at path in
// multi-line mode.
func SearchFile(pattern, path string, count int) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Search(pattern, string(data), count, true)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
