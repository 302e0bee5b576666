package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegraph",
		Short: "Rebuild a site's link graph from its sitemap",
		Long: `sitegraph resolves a sitemap (or sitemap index), visits every page it lists
and reconstructs two trees from the anchors it finds:

  PARENTS  links whose text starts with "< " make the page a child of the target
  SISTERS  links whose text ends with " >" record the target as the next page`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
