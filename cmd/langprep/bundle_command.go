package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"langprep/internal/bundle"
	"langprep/internal/config"
	"langprep/internal/logging"
	"langprep/internal/prepare"
)

func newBundleCommand(ctx *commandContext) *cobra.Command {
	var repoID string
	var readme string
	var dir string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "bundle [files...]",
		Short: "Stage split files and a dataset card for a hub upload",
		Long: `Copy files into the bundle directory and write manifest.json with each
file's size and SHA-256. Without arguments the split files in the configured
output directory are staged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerValue()
			if err != nil {
				return err
			}

			files, err := bundleFiles(cfg, args)
			if err != nil {
				return err
			}

			opts := bundle.Options{
				Files:  files,
				Dir:    cfg.Bundle.Dir,
				RepoID: cfg.Bundle.RepoID,
				Logger: logger,
			}
			if cmd.Flags().Changed("dir") {
				if opts.Dir, err = config.ExpandPath(strings.TrimSpace(dir)); err != nil {
					return fmt.Errorf("resolve bundle directory: %w", err)
				}
			}
			if cmd.Flags().Changed("repo-id") {
				opts.RepoID = strings.TrimSpace(repoID)
			}
			if cmd.Flags().Changed("readme") {
				if opts.Readme, err = config.ExpandPath(strings.TrimSpace(readme)); err != nil {
					return fmt.Errorf("resolve readme path: %w", err)
				}
			} else if path, err := config.ExpandPath(cfg.Bundle.Readme); err == nil {
				if _, statErr := os.Stat(path); statErr == nil {
					opts.Readme = path
				} else {
					logging.WarnWithContext(logger, "dataset card not found; staging without README", "bundle_readme_missing",
						logging.String("path", path),
						logging.String(logging.FieldErrorHint, "pass --readme or set bundle.readme"),
					)
				}
			}

			manifest, err := bundle.Stage(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, manifest)
			}
			rows := make([][]string, 0, len(manifest.Files))
			for _, f := range manifest.Files {
				rows = append(rows, []string{f.Name, strconv.FormatInt(f.Size, 10), f.SHA256[:12]})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"File", "Bytes", "SHA-256"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "Staged %d file(s) in %s\n", len(manifest.Files), opts.Dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoID, "repo-id", "", "Hub repository id recorded in the manifest (default from config)")
	cmd.Flags().StringVar(&readme, "readme", "", "Dataset card copied as README.md (default from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "Bundle directory (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the manifest as JSON")
	return cmd
}

func bundleFiles(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		files := make([]string, 0, len(args))
		for _, arg := range args {
			path, err := config.ExpandPath(strings.TrimSpace(arg))
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", arg, err)
			}
			files = append(files, path)
		}
		return files, nil
	}

	var files []string
	for _, name := range []string{prepare.TrainFile, prepare.ValFile, prepare.TestFile} {
		path := filepath.Join(cfg.Paths.OutputDir, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no split files found in %s; run `langprep split` first or pass files explicitly", cfg.Paths.OutputDir)
	}
	return files, nil
}
