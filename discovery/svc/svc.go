// Package svc discovers applications managed by the Solaris service
// facility. An application counts as managed when it has both a directory
// under the app root and a release symlink under the htdoc root; state and
// start time come from svcs, the version from the release symlink target.
package svc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skillsenselab/hostagent/discovery"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
	"github.com/skillsenselab/hostagent/process"
	"github.com/skillsenselab/hostagent/util"
)

// versionRe pulls the version out of a release symlink target such as
// "billing-2.4.1" or "20260830_101500_billing-2.4.1.jar".
var versionRe = regexp.MustCompile(`(?:\d{8}_\d{6}_[^/+\-|])?([\d.]+)(?:\.jar)?$`)

// Config holds svc discoverer configuration.
type Config struct {
	// Enabled gates the discoverer. On by default.
	Enabled *bool `yaml:"enabled" mapstructure:"enabled"`

	// AppRoot is the directory holding one subdirectory per application.
	AppRoot string `yaml:"app_root" mapstructure:"app_root"`

	// HtdocRoot is the directory holding release symlinks.
	HtdocRoot string `yaml:"htdoc_root" mapstructure:"htdoc_root"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Enabled == nil {
		c.Enabled = util.Ptr(true)
	}
	if c.AppRoot == "" {
		c.AppRoot = "/site/app"
	}
	if c.HtdocRoot == "" {
		c.HtdocRoot = "/site/share/htdoc"
	}
}

// Discoverer finds svc-managed applications.
type Discoverer struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

// Factory returns a discoverer factory bound to the given configuration.
func Factory(cfg Config, runner process.Runner) plugin.Factory[discovery.Discoverer] {
	return func() (discovery.Discoverer, error) {
		cfg.ApplyDefaults()
		if !util.Deref(cfg.Enabled) {
			return nil, fmt.Errorf("svc: discoverer disabled in configuration")
		}
		if runner == nil {
			runner = process.NewRunner()
		}
		return &Discoverer{
			cfg:    cfg,
			runner: runner,
			log:    logger.WithComponent("discovery.svc"),
		}, nil
	}
}

// Name implements plugin.Capability.
func (d *Discoverer) Name() string { return "svc" }

// Discover lists svc-managed applications. Hosts without the expected
// directory layout simply report nothing.
func (d *Discoverer) Discover(ctx context.Context) ([]discovery.Application, error) {
	names, err := d.managedApps()
	if err != nil || len(names) == 0 {
		return nil, err
	}

	apps := make([]discovery.Application, 0, len(names))
	for _, name := range names {
		status, startTime := d.serviceStatus(ctx, name)
		apps = append(apps, discovery.Application{
			Name:      name,
			Version:   d.appVersion(name),
			Status:    status,
			StartTime: startTime,
			Metadata: map[string]any{
				"source":     "svc",
				"log_path":   resolveSymlink(filepath.Join(d.cfg.AppRoot, name, "logs")),
				"distr_path": resolveSymlink(filepath.Join(d.cfg.HtdocRoot, name)),
			},
		})
	}

	d.log.Debug("svc applications discovered", logger.Fields("count", len(apps)))
	return apps, nil
}

// managedApps intersects app root directories with htdoc release symlinks,
// sorted for stable output.
func (d *Discoverer) managedApps() ([]string, error) {
	appEntries, err := os.ReadDir(d.cfg.AppRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("svc: read app root: %w", err)
	}
	htdocEntries, err := os.ReadDir(d.cfg.HtdocRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("svc: read htdoc root: %w", err)
	}

	released := make(map[string]struct{}, len(htdocEntries))
	for _, e := range htdocEntries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		released[stem] = struct{}{}
	}

	var names []string
	for _, e := range appEntries {
		if !e.IsDir() {
			continue
		}
		if _, ok := released[e.Name()]; ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// serviceStatus runs svcs for one service and splits its single output
// line into state and start time.
func (d *Discoverer) serviceStatus(ctx context.Context, name string) (status, startTime string) {
	result, err := d.runner.Run(ctx, process.Command{
		Binary: "svcs",
		Args:   []string{"-Ho", "state,stime", name},
	})
	if err != nil {
		return discovery.Unknown, discovery.Unknown
	}

	output := strings.TrimSpace(string(result.Stdout))
	if output == "" {
		return discovery.Unknown, discovery.Unknown
	}

	state, rest, found := strings.Cut(output, " ")
	if !found || strings.TrimSpace(rest) == "" {
		return state, discovery.Unknown
	}
	return state, strings.TrimSpace(rest)
}

// appVersion parses the version from the release symlink target,
// preferring the directory symlink over the jar symlink.
func (d *Discoverer) appVersion(name string) string {
	target := readSymlinkTarget(filepath.Join(d.cfg.HtdocRoot, name))
	if target == "" {
		target = readSymlinkTarget(filepath.Join(d.cfg.HtdocRoot, name+".jar"))
	}
	if target == "" {
		return "unknown-symlink"
	}

	match := versionRe.FindStringSubmatch(target)
	if match == nil || match[1] == "" {
		return "unknown-re"
	}
	return match[1]
}

func readSymlinkTarget(path string) string {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	return resolved
}

func resolveSymlink(path string) string {
	if target := readSymlinkTarget(path); target != "" {
		return target
	}
	return "Unknown"
}
