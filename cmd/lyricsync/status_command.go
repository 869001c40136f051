package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/deps"
	"lyricsync/internal/preflight"
	"lyricsync/internal/staging"
)

type statusReport struct {
	Version      string             `json:"version"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Staging      stagingSummary     `json:"staging"`
}

type stagingSummary struct {
	Dir        string `json:"dir"`
	Workspaces int    `json:"workspaces"`
	Bytes      int64  `json:"bytes"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var skipLLM bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check binaries, directories, credentials and the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := statusReport{Version: version}
			report.Checks = append(report.Checks,
				preflight.CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckRunLog(cmd.Context(), cfg),
			)
			if skipLLM {
				report.Checks = append(report.Checks, preflight.CheckLLMCredentials(cfg))
			} else {
				report.Checks = append(report.Checks, preflight.CheckLLMFromConfig(cmd.Context(), cfg))
			}
			report.Dependencies = preflight.CheckSystemDeps(cfg)
			report.Staging = summarizeStaging(cfg)

			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("lyricsync "+version, colorize)
			for _, check := range report.Checks {
				lines = append(lines, checkLine(check, colorize))
			}
			lines = append(lines, renderStatusLine("Staging workspaces", statusInfo,
				fmt.Sprintf("%d (%s)", report.Staging.Workspaces, humanize.IBytes(uint64(report.Staging.Bytes))), colorize))
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(cmd, report.Dependencies, colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipLLM, "skip-llm", false, "Only check that an API key is configured; do not call the LLM")
	return cmd
}

func dependencyLines(cmd *cobra.Command, statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if v := deps.Version(cmd.Context(), dep.Command, versionFlag(dep.Name)); v != "" {
				message = fmt.Sprintf("Ready (%s)", v)
			} else if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, dependencyKind(dep), message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
		lines = append(lines, renderStatusLine(dep.Name, dependencyKind(dep), detail, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func versionFlag(name string) string {
	switch name {
	case "FFmpeg", "FFprobe":
		return "-version"
	default:
		return "--version"
	}
}

func summarizeStaging(cfg *config.Config) stagingSummary {
	summary := stagingSummary{Dir: cfg.Paths.StagingDir}
	dirs, err := staging.ListDirectories(cfg.Paths.StagingDir)
	if err != nil {
		return summary
	}
	summary.Workspaces = len(dirs)
	for _, d := range dirs {
		summary.Bytes += d.Size
	}
	return summary
}
