package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"confpub/internal/config"
)

var (
	configureYes   bool
	configurePrint bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create or edit the configuration file interactively",
	Long: `Interactively create or edit the confpub configuration file.

The file stores the Atlassian organization name, username, API token, and an
optional default space key, so publish runs don't need credential flags or
environment variables.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().BoolVar(&configureYes, "yes", false, "Automatically confirm saving changes")
	configureCmd.Flags().BoolVar(&configurePrint, "print", false, "Print resulting YAML instead of writing to file")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configFile)
	cfg, err := loadOrInitConfig(path)
	if err != nil {
		return err
	}

	if err := promptConfluence(cfg); err != nil {
		return err
	}

	outYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if configurePrint {
		cmd.Print(string(outYAML))
		return nil
	}

	if !configureYes {
		confirm := false
		prompt := &survey.Confirm{Message: "Save configuration to " + path + "?", Default: true}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			cmd.Println("Aborted (no changes saved).")
			return nil
		}
	}

	if err := writeConfigFile(path, outYAML); err != nil {
		return err
	}
	cmd.Printf("Configuration saved to %s\n", path)
	return nil
}

func promptConfluence(cfg *config.Config) error {
	qs := []*survey.Question{
		{Name: "org_name", Prompt: &survey.Input{Message: "Atlassian organization name", Default: cfg.Confluence.OrgName}},
		{Name: "username", Prompt: &survey.Input{Message: "Confluence username", Default: cfg.Confluence.Username}},
		{Name: "api_token", Prompt: &survey.Password{Message: "Confluence API token (leave blank to keep)"}},
		{Name: "space_key", Prompt: &survey.Input{Message: "Default space key (optional)", Default: cfg.Confluence.SpaceKey}},
	}
	answers := struct {
		OrgName  string `survey:"org_name"`
		Username string `survey:"username"`
		APIToken string `survey:"api_token"`
		SpaceKey string `survey:"space_key"`
	}{}

	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}

	cfg.Confluence.OrgName = answers.OrgName
	cfg.Confluence.Username = answers.Username
	if answers.APIToken != "" {
		cfg.Confluence.APIToken = answers.APIToken
	}
	cfg.Confluence.SpaceKey = answers.SpaceKey
	return nil
}

func loadOrInitConfig(path string) (*config.Config, error) {
	if fileExists(path) {
		return config.Load(path)
	}
	return &config.Config{}, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func writeConfigFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
