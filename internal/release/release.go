// Package release derives changelogs and semantic-version bumps from
// raw commit messages.
package release

import (
	"fmt"
	"strings"
	"time"
)

// Bump is the semantic-version increment a set of commits calls for.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
	BumpNone  Bump = "none"
)

// CalculateBump inspects commit messages for breaking/feature/fix
// signals and returns the strongest increment found.
func CalculateBump(commits []string) Bump {
	bump := BumpNone
	for _, commit := range commits {
		switch {
		case isBreaking(commit):
			return BumpMajor
		case hasPrefix(commit, "feat"):
			bump = BumpMinor
		case hasPrefix(commit, "fix") && bump == BumpNone:
			bump = BumpPatch
		}
	}
	return bump
}

// GenerateChangelog groups commit messages under a version heading with
// Breaking/Features/Fixes/Other sections. Sections with no entries are
// omitted.
func GenerateChangelog(commits []string, version string, date time.Time) string {
	var breaking, features, fixes, other []string

	for _, commit := range commits {
		commit = strings.TrimSpace(commit)
		if commit == "" {
			continue
		}
		switch {
		case isBreaking(commit):
			breaking = append(breaking, commit)
		case hasPrefix(commit, "feat"):
			features = append(features, commit)
		case hasPrefix(commit, "fix"):
			fixes = append(fixes, commit)
		default:
			other = append(other, commit)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s)\n", version, date.Format("2006-01-02"))

	writeSection := func(title string, entries []string) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n### %s\n\n", title)
		for _, entry := range entries {
			fmt.Fprintf(&b, "- %s\n", entry)
		}
	}

	writeSection("Breaking Changes", breaking)
	writeSection("Features", features)
	writeSection("Fixes", fixes)
	writeSection("Other", other)

	return b.String()
}

// isBreaking reports whether a commit message signals a breaking change,
// either via the `!` marker (feat!:) or a BREAKING CHANGE footer.
func isBreaking(commit string) bool {
	if strings.Contains(commit, "BREAKING CHANGE") {
		return true
	}
	head, _, ok := strings.Cut(commit, ":")
	if !ok {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(head), "!")
}

// hasPrefix matches a conventional-commit type, with or without a
// scope: "feat:", "feat(api):".
func hasPrefix(commit, kind string) bool {
	head, _, ok := strings.Cut(commit, ":")
	if !ok {
		return false
	}
	head = strings.TrimSuffix(strings.TrimSpace(head), "!")
	if idx := strings.Index(head, "("); idx != -1 {
		head = head[:idx]
	}
	return head == kind
}
