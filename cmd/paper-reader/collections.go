// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsato-cnlab/paper-reader/internal/library"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections [collection-key]",
	Short: "List Zotero collections, or the papers in one collection",
	Long: `Without arguments, collections lists the collections of the configured
Zotero library. With a collection key it lists the paper items in that
collection, including whether a PDF attachment was found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollections,
}

func runCollections(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client := library.NewClient(libraryConfig(cmd))

	if len(args) == 0 {
		collections, err := client.Collections(ctx)
		if err != nil {
			return err
		}
		if len(collections) == 0 {
			fmt.Println("No collections found.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-12s  %s\n", "Key", "Name")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 50))
		for _, c := range collections {
			fmt.Fprintf(os.Stdout, "%-12s  %s\n", c.Key, c.Name)
		}
		return nil
	}

	items, err := client.CollectionItems(ctx, args[0])
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No papers found in this collection.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-6s  %-4s  %s\n", "Key", "Year", "PDF", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, item := range items {
		pdf := "yes"
		if item.AttachmentKey == "" {
			pdf = "no"
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-6s  %-4s  %s\n", item.Key, item.Year, pdf, item.Title)
	}
	fmt.Fprintf(os.Stdout, "\n%d paper(s)\n", len(items))
	return nil
}

// libraryConfig assembles the Zotero source configuration from flags,
// with secrets as fallbacks.
func libraryConfig(cmd *cobra.Command) types.LibraryConfig {
	libraryID, _ := cmd.Flags().GetString("library-id")
	libraryType, _ := cmd.Flags().GetString("library-type")
	apiKey, _ := cmd.Flags().GetString("zotero-key")
	storagePath, _ := cmd.Flags().GetString("storage-path")

	return types.LibraryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "paper-reader/" + version,
		},
		LibraryID:   secretDefault("zotero-library-id", libraryID),
		LibraryType: libraryType,
		APIKey:      secretDefault("zotero-api-key", apiKey),
		StoragePath: storagePath,
	}
}

func addLibraryFlags(cmd *cobra.Command) {
	cmd.Flags().String("library-id", "", "Zotero library ID (default: .secrets/zotero-library-id)")
	cmd.Flags().String("library-type", "user", "Zotero library type: user or group")
	cmd.Flags().String("zotero-key", "", "Zotero API key (default: .secrets/zotero-api-key)")
	cmd.Flags().String("storage-path", "", "local Zotero storage directory holding PDF attachments")
}

func init() {
	addLibraryFlags(collectionsCmd)
	rootCmd.AddCommand(collectionsCmd)
}
