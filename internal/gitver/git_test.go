package gitver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers git subcommands from a table keyed by the joined args.
// Commands missing from the table fail like git outside a repository.
type fakeRunner struct {
	responses map[string]string
	failures  map[string]error
	calls     []string
	dirs      []string
}

func (f *fakeRunner) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	f.dirs = append(f.dirs, dir)
	if err, ok := f.failures[key]; ok {
		return "", err
	}
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", fmt.Errorf("git %s: exit status 128: fatal: not a git repository (or any of the parent directories): .git", key)
}

func repoRunner(describe, status, rev string) *fakeRunner {
	return &fakeRunner{responses: map[string]string{
		"rev-parse":              "",
		"describe --tags":        describe,
		"status --porcelain":     status,
		"rev-parse --short HEAD": rev,
	}}
}

func TestParseDescribe(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.5\n", "1.5.0"},
		{"1.5-5-gabc1234\n", "1.5.5"},
		{"2", "2.0.0"},
		{"2-3-g0f0f0f0", "2.3.0"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-4-gdeadbee", "1.2.3.4"},
		{"v1.0-rc1", "v1.0-rc1.0"},
		{"v1.0-rc1-2-gabcdef0", "v1.0-rc1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDescribe(tt.in))
		})
	}
}

func TestParseDescribe_KeepsTagText(t *testing.T) {
	// A bare tag is only ever padded: suffixes and a fourth number survive.
	assert.Equal(t, "1.5-rc1.0", ParseDescribe("1.5-rc1"))
	assert.Equal(t, "1.2.3.4", ParseDescribe("1.2.3.4"))
	assert.Equal(t, "1.5-rc1.7", ParseDescribe("1.5-rc1-7-g1234abc"))
}

func TestClient_Version(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		runner  *fakeRunner
		opts    Options
		want    string
		wantErr error
	}{
		{
			name:   "clean tree",
			runner: repoRunner("1.5-5-gabc1234\n", "", "abc1234\n"),
			opts:   Options{MarkDev: true},
			want:   "1.5.5",
		},
		{
			name:   "dirty tree marked",
			runner: repoRunner("1.5\n", " M main.go\n", "abc1234\n"),
			opts:   Options{MarkDev: true},
			want:   "1.5.0.dev",
		},
		{
			name:   "dirty tree unmarked",
			runner: repoRunner("1.5\n", " M main.go\n", "abc1234\n"),
			opts:   Options{},
			want:   "1.5.0",
		},
		{
			name:   "not a repository with default",
			runner: &fakeRunner{},
			opts:   Options{Default: "0.0.1"},
			want:   "0.0.1",
		},
		{
			name:    "not a repository without default",
			runner:  &fakeRunner{},
			wantErr: ErrNotRepository,
		},
		{
			name: "repository without tags uses default",
			runner: &fakeRunner{
				responses: map[string]string{"rev-parse": ""},
				failures:  map[string]error{"describe --tags": errors.New("fatal: No names found")},
			},
			opts: Options{Default: "0.1.0"},
			want: "0.1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.runner)
			got, err := c.Version(ctx, "/repo", tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Revision(t *testing.T) {
	ctx := context.Background()

	rev, err := NewClient(repoRunner("1.0", "", "abc1234\n")).Revision(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", rev)

	_, err = NewClient(&fakeRunner{}).Revision(ctx, "/tmp")
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestClient_IsModified(t *testing.T) {
	ctx := context.Background()

	modified, err := NewClient(repoRunner("1.0", "?? new.txt\n", "")).IsModified(ctx, "/repo")
	require.NoError(t, err)
	assert.True(t, modified)

	modified, err = NewClient(repoRunner("1.0", "\n", "")).IsModified(ctx, "/repo")
	require.NoError(t, err)
	assert.False(t, modified)

	_, err = NewClient(&fakeRunner{}).IsModified(ctx, "/tmp")
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestClient_VersionLine(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		runner *fakeRunner
		path   string
		opts   LineOptions
		want   string
	}{
		{
			name:   "project from path",
			runner: repoRunner("1.5-2-gabc1234", "", "abc1234\n"),
			path:   "/src/ark",
			want:   "ark 1.5.2 abc1234",
		},
		{
			name:   "explicit project",
			runner: repoRunner("1.5", " M x\n", "abc1234\n"),
			path:   "/src/ark",
			opts:   LineOptions{Project: "tool", MarkDev: true},
			want:   "tool 1.5.0.dev abc1234",
		},
		{
			name:   "no repository omits revision",
			runner: &fakeRunner{},
			path:   "/src/plain",
			opts:   LineOptions{Default: "9.9"},
			want:   "plain 9.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewClient(tt.runner).VersionLine(ctx, tt.path, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewClient(&fakeRunner{}).VersionLine(ctx, "/src/plain", LineOptions{})
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestClient_EmptyPathUsesWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	r := repoRunner("1.0", "", "abc\n")
	_, err = NewClient(r).Revision(context.Background(), "")
	require.NoError(t, err)
	for _, dir := range r.dirs {
		assert.Equal(t, wd, dir)
	}
}

func TestClassifyGitError(t *testing.T) {
	assert.Nil(t, classifyGitError(nil))
	assert.ErrorIs(t, classifyGitError(fmt.Errorf("wrapped: %w", context.Canceled)), context.Canceled)
	assert.Equal(t, ErrNotRepository, classifyGitError(errors.New("fatal: not a git repository")))

	other := errors.New("fatal: bad revision")
	assert.Equal(t, other, classifyGitError(other))
}

// TestGitRunner_RealRepository exercises the git binary when it is
// available.
func TestGitRunner_RealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()

	assert.False(t, IsRepository(ctx, dir))
	v, err := Version(ctx, dir, Options{Default: "0.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", v)

	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	git("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	git("add", "a.txt")
	git("commit", "-q", "-m", "first")
	git("tag", "1.4")

	assert.True(t, IsRepository(ctx, dir))
	v, err = Version(ctx, dir, Options{MarkDev: true})
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("b"), 0644))
	git("commit", "-q", "-am", "second")
	v, err = Version(ctx, dir, Options{MarkDev: true})
	require.NoError(t, err)
	assert.Equal(t, "1.4.1", v)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0644))
	v, err = Version(ctx, dir, Options{MarkDev: true})
	require.NoError(t, err)
	assert.Equal(t, "1.4.1.dev", v)
}
