package appcompat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/appcompat/appcompat/internal/assets"
	"github.com/appcompat/appcompat/internal/launcher"
	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newAssetsCmd(flags *ctlFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "assets", Short: "Inspect and build resource bundles"}

	listCmd := &cobra.Command{
		Use:   "list [glob]",
		Short: "List bundled resources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
				if !doublestar.ValidatePattern(pattern) {
					return fmt.Errorf("invalid pattern %q", pattern)
				}
			}
			b, err := bundleFor(flags)
			if err != nil {
				return err
			}
			entries, err := b.List()
			if err != nil {
				return err
			}
			var shown []assets.Entry
			for _, e := range entries {
				if pattern != "" {
					if ok, _ := doublestar.Match(pattern, e.Name); !ok {
						continue
					}
				}
				shown = append(shown, e)
			}
			return writeAssetTable(c.OutOrStdout(), b, shown)
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check bundled resources against the manifest digests",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			b, err := bundleFor(flags)
			if err != nil {
				return err
			}
			results, err := b.Verify()
			out := c.OutOrStdout()
			for _, r := range results {
				switch {
				case r.OK():
					fmt.Fprintf(out, "ok    %s\n", r.Name)
				case r.Err != nil:
					fmt.Fprintf(out, "FAIL  %s: %v\n", r.Name, r.Err)
				default:
					fmt.Fprintf(out, "FAIL  %s: blake3 %s, manifest says %s\n", r.Name, r.Got, r.Want)
				}
			}
			return err
		},
	}

	var extractDir string
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the launch resources into a directory",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			b, err := bundleFor(flags)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(extractDir, 0o755); err != nil {
				return err
			}
			for _, r := range launcher.Resources() {
				data, err := b.ReadFile(r.Name)
				if err != nil {
					return err
				}
				dst := filepath.Join(extractDir, r.Name)
				if err := os.WriteFile(dst, data, r.Mode); err != nil {
					return fmt.Errorf("writing %s: %w", dst, err)
				}
				if err := os.Chmod(dst, r.Mode); err != nil {
					return fmt.Errorf("setting mode on %s: %w", dst, err)
				}
				fmt.Fprintf(c.OutOrStdout(), "%s %s\n", r.Mode, dst)
			}
			return nil
		},
	}
	extractCmd.Flags().StringVar(&extractDir, "dir", "", "destination directory")
	_ = extractCmd.MarkFlagRequired("dir")

	var packSrc, packDir, packCodec string
	packCmd := &cobra.Command{
		Use:   "pack",
		Short: "Build a resource directory with a manifest",
		Long:  "pack copies the launch resources from --src into --dir, optionally compressed, and writes manifest.yml with their BLAKE3 digests. The result can be used with --assets-dir, as appcompat-assets/ next to the executable, or as the embedded payload.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			codec, err := assets.ParseCodec(packCodec)
			if err != nil {
				return err
			}
			m, err := assets.Pack(packSrc, packDir, codec, launcher.ResourceNames(), version)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "packed %d resources into %s (%s)\n", len(m.Assets), packDir, codec)
			return nil
		},
	}
	packCmd.Flags().StringVar(&packSrc, "src", "", "directory holding the plain resource files")
	packCmd.Flags().StringVar(&packDir, "dir", "", "output directory")
	packCmd.Flags().StringVar(&packCodec, "compress", "none", "zstd|lz4|none")
	_ = packCmd.MarkFlagRequired("src")
	_ = packCmd.MarkFlagRequired("dir")

	var pullDir string
	pullCmd := &cobra.Command{
		Use:   "pull <image-ref>",
		Short: "Fetch resources from an OCI image",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			files, err := assets.Pull(c.Context(), args[0], pullDir, launcher.ResourceNames())
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(c.OutOrStdout(), filepath.Join(pullDir, f))
			}
			return nil
		},
	}
	pullCmd.Flags().StringVar(&pullDir, "dir", "", "destination directory")
	_ = pullCmd.MarkFlagRequired("dir")

	cmd.AddCommand(listCmd, verifyCmd, extractCmd, packCmd, pullCmd)
	return cmd
}

func bundleFor(flags *ctlFlags) (*assets.Bundle, error) {
	fc, err := flags.settings()
	if err != nil {
		return nil, err
	}
	b, err := openBundle(fc)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func writeAssetTable(w io.Writer, b *assets.Bundle, entries []assets.Entry) error {
	fmt.Fprintf(w, "source: %s\n", b.Origin())
	if m := b.Manifest(); m != nil && m.Version != "" {
		fmt.Fprintf(w, "manifest version: %s\n", m.Version)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "no resources")
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Stored", "Size", "Compression", "BLAKE3")
	for _, e := range entries {
		digest := e.Digest
		if len(digest) > 16 {
			digest = digest[:16]
		}
		if err := table.Append([]string{e.Name, e.Stored, strconv.FormatInt(e.StoredSize, 10), string(e.Compression), digest}); err != nil {
			return err
		}
	}
	return table.Render()
}
