package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgairbot/cli/internal/version"
)

var infoFormat string

var infoCmd = &cobra.Command{
	Use:     "info",
	Aliases: []string{"i"},
	Short:   "Display tgairbot project details",
	Long: `Display information about the tgairbot CLI and the environment it runs in:

- CLI version and git commit
- Go runtime and target platform
- Node.js version, when node is on PATH

Examples:
  tgairbot info                 # Human readable output
  tgairbot info --format json   # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "text", "Output format (text, json)")
}

// Info is what "tgairbot info" reports.
type Info struct {
	*version.BuildInfo
	NodeVersion string `json:"node_version,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	info := Info{
		BuildInfo:   version.GetBuildInfo(),
		NodeVersion: nodeVersion(ctx),
	}

	switch infoFormat {
	case "json":
		return writeInfoJSON(os.Stdout, info)
	case "text":
		return writeInfoText(os.Stdout, info)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", infoFormat)
	}
}

// nodeVersion returns the output of "node --version", or "" when node is
// not available.
func nodeVersion(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "node", "--version").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func writeInfoJSON(w io.Writer, info Info) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func writeInfoText(w io.Writer, info Info) error {
	fmt.Fprintln(w, "[System Information]")
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "OS Version\t: %s\n", info.Platform)
	fmt.Fprintf(tw, "Go Version\t: %s\n", info.GoVersion)
	if info.NodeVersion != "" {
		fmt.Fprintf(tw, "NodeJS Version\t: %s\n", info.NodeVersion)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "[tgairbot CLI]")
	tw = tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "tgairbot CLI Version\t: %s\n", info.Version)
	fmt.Fprintf(tw, "Git Commit\t: %s\n", info.GitCommit)
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(tw, "Build Time\t: %s\n", info.BuildTime.Format(time.RFC3339))
	}
	return tw.Flush()
}
