package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"confpub/internal/config"
	"confpub/internal/markdown"
	"confpub/internal/publisher"
	"confpub/pkg/logger"
)

var (
	username      string
	password      string
	orgName       string
	ancestorTitle string
	attachFiles   []string
	generateTOC   bool
	noSSL         bool
	deletePage    bool
	configFile    string
	verbose       bool
)

// rootCmd is the publish operation itself: create the page when absent,
// update it in place when present.
var rootCmd = &cobra.Command{
	Use:   "confpub <markdown-file> [space-key]",
	Short: "Publish a markdown file as a Confluence page",
	Long: `Publish a single markdown document to a Confluence space.

The first top-level heading becomes the page title. If a page with that
title already exists in the space it is updated in place; otherwise it is
created. Local images referenced by the document are uploaded as page
attachments and their references rewritten to the uploaded copies.`,
	Example: `  confpub README.md DOCS
  confpub -a "Team Handbook" -c guide.md DOCS     # nest under a parent, with TOC
  confpub -t diagram.pdf notes.md DOCS            # publish with extra attachments
  confpub -d obsolete.md DOCS                     # delete the page instead`,
	Args:          cobra.RangeArgs(1, 2),
	RunE:          runPublish,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Every failure exits with status 1,
// including the terminal state after a delete run.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Confluence username (env CONFLUENCE_USERNAME)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Confluence API token (env CONFLUENCE_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&orgName, "orgname", "o", "", "Atlassian organization name (env CONFLUENCE_ORGNAME)")
	rootCmd.PersistentFlags().BoolVarP(&noSSL, "nossl", "n", false, "use http instead of https")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.Flags().StringVarP(&ancestorTitle, "ancestor", "a", "", "nest the page under this parent page title")
	rootCmd.Flags().StringArrayVarP(&attachFiles, "attachments", "t", nil, "additional file to upload as an attachment (repeatable)")
	rootCmd.Flags().BoolVarP(&generateTOC, "contents", "c", false, "insert a generated table of contents")
	rootCmd.Flags().BoolVarP(&deletePage, "delete", "d", false, "delete the page instead of publishing")
}

func runPublish(cmd *cobra.Command, args []string) error {
	markdownFile := args[0]
	spaceKey := ""
	if len(args) == 2 {
		spaceKey = args[1]
	}

	settings, err := config.Resolve(config.Options{
		Username:   username,
		Password:   password,
		OrgName:    orgName,
		SpaceKey:   spaceKey,
		ConfigFile: configFile,
		NoSSL:      noSSL,
	})
	if err != nil {
		return err
	}

	info, err := os.Stat(markdownFile)
	if err != nil {
		return fmt.Errorf("failed to access markdown file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; provide a single markdown file", markdownFile)
	}
	if strings.ToLower(filepath.Ext(markdownFile)) != ".md" {
		return fmt.Errorf("file must have .md extension: %s", markdownFile)
	}

	log := logger.New(verbose)

	doc, err := markdown.Transform(markdownFile, generateTOC)
	if err != nil {
		return err
	}
	log.Debug("Transformed markdown file: title=%s", doc.Title)

	client := newConfluenceClient(settings.BaseURL, settings.Username, settings.APIToken, log)
	pub := publisher.New(client, log)

	record, err := pub.Run(publisher.Request{
		Document:         doc,
		SpaceKey:         settings.SpaceKey,
		AncestorTitle:    ancestorTitle,
		ExtraAttachments: attachFiles,
		Delete:           deletePage,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published '%s': %s\n", doc.Title, record.Link)
	return nil
}
