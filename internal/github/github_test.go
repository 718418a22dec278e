package github

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *CheckResult {
	return &CheckResult{
		Undocumented:    []string{"services.foo.port"},
		Untyped:         []string{"services.foo.extra"},
		ParseFailures:   []string{"broken.nix: unexpected token"},
		MissingSections: []string{"docs/services/foo.md"},
	}
}

func TestCheckResultCounts(t *testing.T) {
	assert.False(t, (&CheckResult{}).HasIssues())
	r := sampleResult()
	assert.True(t, r.HasIssues())
	assert.Equal(t, 4, r.TotalIssues())
}

func TestGenerateIssueBody(t *testing.T) {
	m := NewIssueManager("owner/repo", "https://ci/run/1", log.New(io.Discard)).WithBranch("dev")
	body := m.GenerateIssueBody(sampleResult())

	assert.Contains(t, body, "### Undocumented Options (1)\n")
	assert.Contains(t, body, "- [ ] `services.foo.port`\n")
	assert.Contains(t, body, "### Untyped Options (1)\n")
	assert.Contains(t, body, "- [ ] `broken.nix: unexpected token`\n")
	assert.Contains(t, body, "- [ ] [foo](https://github.com/owner/repo/blob/dev/docs/services/foo.md)\n")
	assert.Contains(t, body, "**Workflow run:** [link](https://ci/run/1)\n")
	assert.Equal(t, "[Nix Options] 4 documentation issue(s) found", m.GenerateIssueTitle(sampleResult()))
}

type fakeGH struct {
	calls   [][]string
	outputs map[string]string
	fail    map[string]error
}

func (f *fakeGH) run(_ context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	key := args[0] + " " + args[1]
	if err := f.fail[key]; err != nil {
		return "", err
	}
	return f.outputs[key], nil
}

func (f *fakeGH) subcommands() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c[1])
	}
	return out
}

func newManager(gh *fakeGH) *IssueManager {
	return NewIssueManager("owner/repo", "", log.New(io.Discard)).WithRunner(gh.run)
}

func TestManageIssueCreates(t *testing.T) {
	gh := &fakeGH{outputs: map[string]string{
		"issue list":   "[]",
		"issue create": "https://github.com/owner/repo/issues/42\n",
	}}
	action, num, err := newManager(gh).ManageIssue(context.Background(), sampleResult(), DefaultIssueLabel)
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, action)
	assert.Equal(t, 42, num)
	assert.Equal(t, []string{"list", "create", "pin"}, gh.subcommands())
}

func TestManageIssueUpdatesAndReopens(t *testing.T) {
	gh := &fakeGH{
		outputs: map[string]string{"issue list": `[{"number":7,"title":"old","state":"CLOSED"}]`},
		fail:    map[string]error{"issue pin": errors.New("already pinned")},
	}
	action, num, err := newManager(gh).ManageIssue(context.Background(), sampleResult(), DefaultIssueLabel)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)
	assert.Equal(t, 7, num)
	assert.Equal(t, []string{"list", "edit", "reopen", "pin"}, gh.subcommands())
}

func TestManageIssueCloses(t *testing.T) {
	gh := &fakeGH{outputs: map[string]string{"issue list": `[{"number":7,"title":"old","state":"OPEN"}]`}}
	action, num, err := newManager(gh).ManageIssue(context.Background(), &CheckResult{}, DefaultIssueLabel)
	require.NoError(t, err)
	assert.Equal(t, ActionClosed, action)
	assert.Equal(t, 7, num)
	assert.Equal(t, []string{"list", "unpin", "comment", "close"}, gh.subcommands())
}

func TestManageIssueNothingToDo(t *testing.T) {
	gh := &fakeGH{outputs: map[string]string{"issue list": "[]"}}
	action, _, err := newManager(gh).ManageIssue(context.Background(), &CheckResult{}, DefaultIssueLabel)
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
	assert.Len(t, gh.calls, 1)
}

func TestManageIssueListFailure(t *testing.T) {
	gh := &fakeGH{fail: map[string]error{"issue list": errors.New("not authenticated")}}
	_, _, err := newManager(gh).ManageIssue(context.Background(), sampleResult(), DefaultIssueLabel)
	assert.ErrorContains(t, err, "finding existing issue: not authenticated")
}

func TestParseIssueNumber(t *testing.T) {
	n, err := parseIssueNumber("https://github.com/o/r/issues/123\n")
	require.NoError(t, err)
	assert.Equal(t, 123, n)

	_, err = parseIssueNumber("garbage")
	assert.Error(t, err)
}

func TestOutputGitHubActions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output")
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_OUTPUT", out)

	m := NewIssueManager("owner/repo", "", log.New(io.Discard))
	require.NoError(t, m.OutputGitHubActions(sampleResult()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "has_issues=true\n")
	assert.Contains(t, content, "total_issues=4\n")
	assert.Contains(t, content, "parse_failures=1\n")
	assert.Contains(t, content, "issue_body<<EOF\n## ")
}

func TestOutputGitHubActionsOutsideActions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITHUB_OUTPUT", out)

	require.NoError(t, NewIssueManager("o/r", "", log.New(io.Discard)).OutputGitHubActions(sampleResult()))
	assert.NoFileExists(t, out)
}

func TestGetWorkflowURL(t *testing.T) {
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("GITHUB_REPOSITORY", "owner/repo")
	t.Setenv("GITHUB_RUN_ID", "99")
	assert.Equal(t, "https://github.com/owner/repo/actions/runs/99", GetWorkflowURL())
	assert.Equal(t, "owner/repo", GetRepository())

	t.Setenv("GITHUB_RUN_ID", "")
	assert.Empty(t, GetWorkflowURL())
}

func TestUpdateSummaryMarkdown(t *testing.T) {
	s := NewUpdateSummary()
	s.Files, s.Options = 3, 12
	s.AddDoc(DocResult{Path: "docs/a.md", Status: StatusUpdated, Options: 5})
	s.AddDoc(DocResult{Path: "docs/b.md", Status: StatusUnchanged})
	s.AddDoc(DocResult{Path: "docs/c.md", Status: StatusSkipped, SkipReason: "disabled"})
	s.AddDoc(DocResult{Path: "docs/d.md", Status: StatusError, Error: "a|b"})
	s.SetCheckResult(sampleResult())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, s.Errors)

	md := s.Markdown()
	assert.Contains(t, md, "| Options | 12 |\n")
	assert.Contains(t, md, "### Updated Documents (1)\n")
	assert.Contains(t, md, "| docs/a.md | 5 |\n")
	assert.Contains(t, md, "| docs/c.md | disabled |\n")
	assert.Contains(t, md, `| docs/d.md | a\|b |`)
	assert.Contains(t, md, "**Undocumented Options:** 1 options\n")
}

func TestWriteGitHubSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_STEP_SUMMARY", path)

	s := NewUpdateSummary()
	s.Options = 1
	require.NoError(t, s.WriteGitHubSummary())
	require.NoError(t, s.WriteGitHubSummary())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "## 📚 Nix Options Documentation"))
}
