package release

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBump(t *testing.T) {
	tests := []struct {
		name     string
		commits  []string
		expected Bump
	}{
		{
			name:     "breaking_marker_wins",
			commits:  []string{"fix: typo", "feat!: drop v1 API", "feat: new page"},
			expected: BumpMajor,
		},
		{
			name:     "breaking_change_footer",
			commits:  []string{"refactor: rework config\n\nBREAKING CHANGE: env vars renamed"},
			expected: BumpMajor,
		},
		{
			name:     "feature_over_fix",
			commits:  []string{"fix: typo", "feat: search"},
			expected: BumpMinor,
		},
		{
			name:     "fix_only",
			commits:  []string{"fix: broken anchor", "fix(docs): 404 page"},
			expected: BumpPatch,
		},
		{
			name:     "scoped_feature",
			commits:  []string{"feat(api): pagination"},
			expected: BumpMinor,
		},
		{
			name:     "chores_are_none",
			commits:  []string{"chore: bump deps", "docs: clarify readme"},
			expected: BumpNone,
		},
		{
			name:     "empty_is_none",
			commits:  nil,
			expected: BumpNone,
		},
		{
			name:     "feature_word_in_body_not_counted",
			commits:  []string{"chore: mention feat in passing"},
			expected: BumpNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateBump(tt.commits))
		})
	}
}

func TestGenerateChangelog(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	commits := []string{
		"feat: add search",
		"fix: broken sidebar link",
		"feat!: remove legacy redirects",
		"chore: bump goquery",
	}

	out := GenerateChangelog(commits, "v2.0.0", date)

	assert.Contains(t, out, "## v2.0.0 (2026-03-14)")
	assert.Contains(t, out, "### Breaking Changes")
	assert.Contains(t, out, "- feat!: remove legacy redirects")
	assert.Contains(t, out, "### Features")
	assert.Contains(t, out, "- feat: add search")
	assert.Contains(t, out, "### Fixes")
	assert.Contains(t, out, "- fix: broken sidebar link")
	assert.Contains(t, out, "### Other")
	assert.Contains(t, out, "- chore: bump goquery")
}

func TestGenerateChangelogOmitsEmptySections(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	out := GenerateChangelog([]string{"fix: one thing"}, "v1.0.1", date)

	assert.Contains(t, out, "### Fixes")
	assert.NotContains(t, out, "### Features")
	assert.NotContains(t, out, "### Breaking Changes")
	assert.NotContains(t, out, "### Other")
}

func TestGenerateChangelogSkipsBlankCommits(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	out := GenerateChangelog([]string{"", "  ", "fix: real"}, "v1.0.1", date)

	assert.Contains(t, out, "- fix: real")
	assert.NotContains(t, out, "- \n")
}
