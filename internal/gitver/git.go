// Package gitver derives version strings and revision hashes from a git
// working tree.
//
// Versions come from tags in a two number format like 1.5. The number of
// commits since the tag becomes the third component, so five commits after
// 1.5 the version is 1.5.5. With MarkDev set, uncommitted changes append
// ".dev".
package gitver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blackwell-systems/ark/internal/text"
)

// ErrNotRepository is returned when a path is not inside a git work tree
// and no default version was given.
var ErrNotRepository = errors.New("not a git repository")

// Runner runs a git subcommand in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner runs the git binary found on PATH.
type GitRunner struct{}

// Run executes "git -C dir args...".
func (GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	return runGit(ctx, dir, args...)
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	command := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stderr strings.Builder
	command.Stderr = &stderr
	output, err := command.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return string(output), nil
}

func classifyGitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	if strings.Contains(strings.ToLower(err.Error()), "not a git repository") {
		return ErrNotRepository
	}
	return err
}

// Options controls Version.
type Options struct {
	// Default is returned when path is not a repository.
	Default string
	// MarkDev appends ".dev" when the work tree has uncommitted changes.
	MarkDev bool
}

// LineOptions controls VersionLine.
type LineOptions struct {
	// Project names the line. Defaults to the base name of the path.
	Project string
	Default string
	MarkDev bool
}

// Client answers version questions through a Runner.
type Client struct {
	Runner Runner
}

// NewClient returns a Client using r, or GitRunner when r is nil.
func NewClient(r Runner) *Client {
	if r == nil {
		r = GitRunner{}
	}
	return &Client{Runner: r}
}

var defaultClient = NewClient(nil)

// IsRepository reports whether path is inside a git work tree.
func IsRepository(ctx context.Context, path string) bool {
	return defaultClient.IsRepository(ctx, path)
}

// Version returns the version of the repository at path.
func Version(ctx context.Context, path string, opts Options) (string, error) {
	return defaultClient.Version(ctx, path, opts)
}

// Revision returns the abbreviated hash of HEAD.
func Revision(ctx context.Context, path string) (string, error) {
	return defaultClient.Revision(ctx, path)
}

// IsModified reports whether the work tree has uncommitted changes.
func IsModified(ctx context.Context, path string) (bool, error) {
	return defaultClient.IsModified(ctx, path)
}

// VersionLine returns "<project> <version> <revision>".
func VersionLine(ctx context.Context, path string, opts LineOptions) (string, error) {
	return defaultClient.VersionLine(ctx, path, opts)
}

// IsRepository reports whether path is inside a git work tree.
func (c *Client) IsRepository(ctx context.Context, path string) bool {
	_, err := c.Runner.Run(ctx, resolve(path), "rev-parse")
	return err == nil
}

// Version returns the normalized "git describe --tags" output for path.
// If path is not a repository, opts.Default is returned, or
// ErrNotRepository when it is empty.
func (c *Client) Version(ctx context.Context, path string, opts Options) (string, error) {
	dir := resolve(path)
	if !c.IsRepository(ctx, dir) {
		if opts.Default != "" {
			return opts.Default, nil
		}
		return "", fmt.Errorf("%w: cannot get version of %s and no default was given", ErrNotRepository, dir)
	}

	out, err := c.Runner.Run(ctx, dir, "describe", "--tags")
	if err != nil {
		// A repository without tags has no version either.
		if opts.Default != "" {
			return opts.Default, nil
		}
		return "", fmt.Errorf("failed to describe %s: %w", dir, classifyGitError(err))
	}

	v := ParseDescribe(out)
	if opts.MarkDev {
		modified, err := c.IsModified(ctx, dir)
		if err != nil {
			return "", err
		}
		if modified {
			v += ".dev"
		}
	}
	return v, nil
}

// Revision returns the abbreviated hash of HEAD, or ErrNotRepository.
func (c *Client) Revision(ctx context.Context, path string) (string, error) {
	dir := resolve(path)
	if !c.IsRepository(ctx, dir) {
		return "", fmt.Errorf("%w: cannot get revision of %s", ErrNotRepository, dir)
	}
	out, err := c.Runner.Run(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get revision of %s: %w", dir, classifyGitError(err))
	}
	return strings.TrimSpace(out), nil
}

// IsModified reports whether "git status --porcelain" lists any change.
func (c *Client) IsModified(ctx context.Context, path string) (bool, error) {
	out, err := c.Runner.Run(ctx, resolve(path), "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", classifyGitError(err))
	}
	return strings.TrimSpace(out) != "", nil
}

// VersionLine returns "<project> <version> <revision>". The revision is
// left out when it cannot be determined.
func (c *Client) VersionLine(ctx context.Context, path string, opts LineOptions) (string, error) {
	dir := resolve(path)
	v, err := c.Version(ctx, dir, Options{Default: opts.Default, MarkDev: opts.MarkDev})
	if err != nil {
		return "", err
	}
	r, err := c.Revision(ctx, dir)
	if err != nil {
		r = ""
	}
	project := opts.Project
	if project == "" {
		project = filepath.Base(dir)
	}
	return strings.TrimSpace(text.NewBuilder().Push(project, v, r).String()), nil
}

var describeRe = regexp.MustCompile(`^(.+)-(\d+)-g[0-9a-f]+$`)

// ParseDescribe normalizes "git describe --tags" output. A bare tag is
// padded with ".0" to three components; "TAG-N-gHASH" becomes "TAG.N",
// padded the same way. Pre-release suffixes and extra components are kept,
// never stripped.
func ParseDescribe(describe string) string {
	v := strings.TrimSpace(describe)
	if m := describeRe.FindStringSubmatch(v); m != nil {
		v = m[1] + "." + m[2]
	}
	for strings.Count(v, ".") < 2 {
		v += ".0"
	}
	return v
}

// resolve turns an empty path into the working directory.
func resolve(path string) string {
	if path != "" {
		return path
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
