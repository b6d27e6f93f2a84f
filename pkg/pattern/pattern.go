// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package pattern compiles a dotted, "*"-wildcarded query string (such as
// "System.Configuration.ConfigurationManager.AppSettings" or
// "System.Web.*") into an ordered list of parts the Evaluator matches
// against interned symbol strings.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	interrors "github.com/kraklabs/csharp-analyzer/internal/errors"
)

// ErrBadPattern is returned when a pattern part is not a valid regular
// expression fragment: a part containing "*" is checked once "*" is
// substituted with "(.*)", a part without "*" is checked as written.
var ErrBadPattern = interrors.ErrBadPattern

// part is one dotted component of a compiled Pattern.
type part struct {
	literal string
	re      *regexp.Regexp // nil for a pure-literal part
}

func (p part) matches(s string) bool {
	if p.re != nil {
		return p.re.MatchString(s)
	}
	return p.literal == s
}

// Pattern is a compiled, dotted query. It is short-lived: create one per
// query with Compile, use it, and discard it.
type Pattern struct {
	parts []part
	raw   string
}

// Raw returns the original query string the Pattern was compiled from.
func (p *Pattern) Raw() string {
	return p.raw
}

// Len returns the number of dotted parts in the pattern.
func (p *Pattern) Len() int {
	return len(p.parts)
}

// Compile splits query on "." and compiles each component. A component
// containing "*" is translated to a regular expression by replacing every
// "*" with "(.*)" (the literal "*" alone becomes the regex ".*"); a
// component without "*" matches by plain string equality, but is still
// rejected with ErrBadPattern if it is not a valid regular expression
// (e.g. an unbalanced bracket).
//
// Matching uses the regex engine's "is a match anywhere" predicate rather
// than a pinned full-match anchor: a pattern component can therefore match
// a substring of a longer component than the author may have intended.
func Compile(query string) (*Pattern, error) {
	rawParts := strings.Split(query, ".")
	parts := make([]part, 0, len(rawParts))

	for _, raw := range rawParts {
		if !strings.Contains(raw, "*") {
			if _, err := regexp.Compile(raw); err != nil {
				return nil, fmt.Errorf("%w: component %q: %v", ErrBadPattern, raw, err)
			}
			parts = append(parts, part{literal: raw})
			continue
		}
		pat := strings.ReplaceAll(raw, "*", "(.*)")
		if raw == "*" {
			pat = ".*"
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("%w: component %q: %v", ErrBadPattern, raw, err)
		}
		parts = append(parts, part{re: re})
	}

	return &Pattern{parts: parts, raw: query}, nil
}

// matchesWindow checks components against the pattern's parts over their
// shared prefix only: whichever of the two runs out first simply stops the
// comparison. An import shorter than the pattern (only a prefix of the full
// reference was imported) and a pattern longer than the namespace under
// test both match as long as every position they do share agrees.
func (p *Pattern) matchesWindow(s string) bool {
	components := strings.Split(s, ".")
	limit := len(p.parts)
	if len(components) < limit {
		limit = len(components)
	}
	for i := 0; i < limit; i++ {
		if !p.parts[i].matches(components[i]) {
			return false
		}
	}
	return true
}

// MatchesImportPrefix reports whether s, split on ".", matches the pattern
// over their shared dotted prefix: an import naming only the first few
// components of a longer pattern still matches, since the import is a
// prefix of whatever the code may reference further down.
func (p *Pattern) MatchesImportPrefix(s string) bool {
	return p.matchesWindow(s)
}

// MatchesNamespace applies the same positional rule as MatchesImportPrefix:
// trailing pattern parts beyond s's length are ignored, so a pattern longer
// than the namespace being tested is still considered a match.
func (p *Pattern) MatchesNamespace(s string) bool {
	return p.matchesWindow(s)
}

// MatchesLeaf reports whether the pattern's last part matches s.
func (p *Pattern) MatchesLeaf(s string) bool {
	if len(p.parts) == 0 {
		return false
	}
	return p.parts[len(p.parts)-1].matches(s)
}
