// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/tsato-cnlab/paper-reader/internal/store"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List or export stored analysis artifacts",
	Long: `Artifacts queries the local artifact database. Use --status to narrow
to failed or partial papers (the candidates for analyze --retry-failed),
and export to write the artifacts as YAML or JSON.`,
	RunE: runArtifactsList,
}

var artifactsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export stored artifacts to a YAML or JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runArtifactsExport,
}

func runArtifactsList(cmd *cobra.Command, args []string) error {
	artifacts, err := queryArtifacts(cmd)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(artifacts)
	}

	if len(artifacts) == 0 {
		fmt.Println("No artifacts found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-50s  %-8s  %-8s  %s\n",
		"Status", "Title", "Summary", "Slides", "Error")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, art := range artifacts {
		title := art.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		errText := art.Error
		if len(errText) > 30 {
			errText = errText[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-50s  %-8s  %-8s  %s\n",
			art.Status, title, yesNo(art.Summary != ""), yesNo(art.Slides != ""), errText)
	}

	fmt.Fprintf(os.Stdout, "\n%d artifact(s)\n", len(artifacts))
	return nil
}

func runArtifactsExport(cmd *cobra.Command, args []string) error {
	artifacts, err := queryArtifacts(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	var data []byte
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(artifacts)
	case "json":
		data, err = json.MarshalIndent(artifacts, "", "  ")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling artifacts: %w", err)
	}

	if len(args) == 0 {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Printf("Exported %d artifact(s) to %s\n", len(artifacts), args[0])
	return nil
}

func queryArtifacts(cmd *cobra.Command) ([]types.AnalysisArtifact, error) {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	status, _ := cmd.Flags().GetString("status")

	st, err := store.NewStore(indexDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.ListArtifacts(context.Background(), types.AnalysisStatus(status))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	artifactsCmd.PersistentFlags().String("index-dir", "index", "directory holding the artifact database")
	artifactsCmd.PersistentFlags().String("status", "", "filter by status: success, partial, or failed")
	artifactsCmd.Flags().Bool("json", false, "output as JSON")

	artifactsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	artifactsCmd.AddCommand(artifactsExportCmd)
	rootCmd.AddCommand(artifactsCmd)
}
