package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quill/internal/diag"
	"quill/internal/driver"
	"quill/internal/prof"
	"quill/internal/project"
	"quill/internal/version"
)

var (
	checkWatch      bool
	checkUI         bool
	checkJobs       int
	checkCacheDir   string
	checkCPUProfile string
	checkMemProfile string
	checkNoSpec     bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "re-check whenever a module changes")
	checkCmd.Flags().BoolVar(&checkNoSpec, "no-specialize", false, "stop before monomorphisation")
	checkCmd.Flags().BoolVar(&checkUI, "ui", false, "show interactive progress")
	checkCmd.Flags().IntVar(&checkJobs, "jobs", 0, "parallel module loads (0 = all CPUs)")
	checkCmd.Flags().StringVar(&checkCacheDir, "cache-dir", "", "directory for the result cache")
	checkCmd.Flags().StringVar(&checkCPUProfile, "cpuprofile", "", "write a CPU profile to this file")
	checkCmd.Flags().StringVar(&checkMemProfile, "memprofile", "", "write a heap profile to this file")
}

var checkCmd = &cobra.Command{
	Use:   "check [modules...]",
	Short: "Type-check quantum modules and verify resource usage",
	Long: `Check loads the given .qmod files, resolves their declarations,
runs the type and linearity checker, and reports diagnostics.
With no arguments the module list comes from the nearest quill.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return err
		}
		cfg.SkipMono = checkNoSpec

		if checkCPUProfile != "" {
			if err := prof.StartCPU(checkCPUProfile); err != nil {
				return err
			}
			defer prof.StopCPU()
		}
		if checkMemProfile != "" {
			defer func() {
				_ = prof.WriteMem(checkMemProfile)
			}()
		}

		if checkWatch {
			return runWatch(cmd, cfg)
		}
		res, err := runCheck(cmd, cfg)
		if err != nil {
			return err
		}
		return reportResult(cmd, cfg, res)
	},
}

// buildConfig merges the manifest, persistent flags, and command flags.
// Explicit arguments win over quill.toml; flags win over manifest values.
func buildConfig(cmd *cobra.Command, args []string) (driver.Config, error) {
	cfg := driver.Config{
		Paths:    args,
		Jobs:     checkJobs,
		CacheDir: checkCacheDir,
	}
	if maxDiag, err := cmd.Flags().GetInt("max-diagnostics"); err == nil {
		cfg.MaxDiagnostics = maxDiag
	}

	if len(cfg.Paths) == 0 {
		manifest, ok, err := project.Load(".")
		if err != nil {
			return cfg, err
		}
		if !ok {
			return cfg, fmt.Errorf("no modules given and no quill.toml found\nrun with explicit paths, e.g.:\n  quill check build/main.qmod")
		}
		if err := manifest.CheckToolchain(version.Version); err != nil {
			return cfg, err
		}
		cfg.Paths = manifest.ModulePaths()
		if cfg.Jobs == 0 {
			cfg.Jobs = manifest.Config.Check.Jobs
		}
		if cfg.CacheDir == "" {
			cfg.CacheDir = manifest.Config.Check.CacheDir
		}
		if cfg.MaxDiagnostics == 0 {
			cfg.MaxDiagnostics = manifest.Config.Check.MaxDiagnostics
		}
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, cfg driver.Config) (*driver.Result, error) {
	ctx := cmd.Context()
	if checkUI && isTerminal(os.Stdout) {
		return runCheckWithUI(ctx, "quill check", cfg)
	}
	return driver.Check(ctx, cfg)
}

func runWatch(cmd *cobra.Command, cfg driver.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := driver.Watch(ctx, cfg, driver.DefaultDebounce, func(res *driver.Result) {
		// Watch mode never fails the process, it keeps reporting.
		_ = reportResult(cmd, cfg, res)
		fmt.Fprintln(cmd.OutOrStdout(), "watching for changes...")
	})
	if ctx.Err() != nil {
		return nil // interrupted, not failed
	}
	return err
}

func reportResult(cmd *cobra.Command, cfg driver.Config, res *driver.Result) error {
	out := cmd.OutOrStdout()
	quiet, _ := cmd.Flags().GetBool("quiet")

	renderer := &diag.Renderer{Files: res.Files, Color: colorEnabled(cmd)}
	renderer.Render(out, res.Bag)

	errs := 0
	warns := 0
	for _, d := range res.Bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}

	if !quiet {
		status := "ok"
		if errs > 0 {
			status = "failed"
		}
		cached := ""
		if res.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(out, "check %s: %d modules, %d errors, %d warnings in %s%s\n",
			status, len(cfg.Paths), errs, warns, res.Duration.Round(time.Millisecond), cached)
	}
	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		fmt.Fprint(out, res.Timings.Summary())
	}
	if errs > 0 {
		return fmt.Errorf("check failed with %d errors", errs)
	}
	return nil
}
