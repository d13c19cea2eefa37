package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"plexmeta/internal/config"
	"plexmeta/internal/services/plex"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set [tmdb] api_key (or export TMDB_API_KEY) and the [plex] connection before mapping.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var checkPlex bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Cache:       %s\n", cacheSummary(cfg))
			fmt.Fprintf(out, "Trakt:       %s\n", yesNo(cfg.TraktEnabled()))
			fmt.Fprintf(out, "AniDB:       %s\n", yesNo(cfg.AniDB.Enabled))
			fmt.Fprintf(out, "MyAnimeList: %s\n", yesNo(cfg.MyAnimeList.Enabled))

			if checkPlex {
				if err := cfg.ValidatePlex(); err != nil {
					return err
				}
				timeout := time.Duration(cfg.Plex.TimeoutSeconds) * time.Second
				client, err := plex.New(cfg.Plex.URL, cfg.Plex.Token, timeout)
				if err != nil {
					return err
				}
				checkCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				if err := client.CheckAuth(checkCtx); err != nil {
					return fmt.Errorf("plex check: %w", err)
				}
				fmt.Fprintf(out, "Plex:        reachable at %s\n", cfg.Plex.URL)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkPlex, "plex", false, "Also verify the Plex URL and token")
	return cmd
}

func cacheSummary(cfg *config.Config) string {
	if !cfg.CacheEnabled() {
		return "disabled"
	}
	return fmt.Sprintf("%s (expires after %d days)", cfg.Cache.Path, cfg.Cache.ExpirationDays)
}
