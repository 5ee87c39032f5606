package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/autofree/internal/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Instrument every C file under a directory",
	Long: `Walks dir, honoring .autofreeignore files, and instruments every .c file it
finds. The instrumented tree is mirrored under the output directory together
with one interchange file per source. Files that fail to parse are reported
and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("output")
		withHeaders, _ := cmd.Flags().GetBool("headers")

		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("getting absolute path: %w", err)
		}
		outAbs, err := filepath.Abs(outDir)
		if err != nil {
			return fmt.Errorf("getting absolute path: %w", err)
		}
		if outAbs == root {
			return fmt.Errorf("output directory must differ from %s", args[0])
		}

		opts := scanner.DefaultOptions()
		opts.IncludeHeaders = withHeaders
		if rel, err := filepath.Rel(root, outAbs); err == nil && !strings.HasPrefix(rel, "..") {
			opts.DefaultExcludes = append(opts.DefaultExcludes, filepath.Base(outAbs))
		}
		files, err := scanner.New(opts).Scan(root)
		if err != nil {
			return err
		}
		logger.Debug("scan finished", "root", root, "files", len(files))

		s := openSession(cmd.Context())
		defer s.close(context.WithoutCancel(cmd.Context()))

		ext := filepath.Ext(cfg.PointsFile)
		failed, total := 0, 0
		for _, f := range files {
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			output := filepath.Join(outAbs, filepath.FromSlash(f.Path))
			if f.Kind == scanner.KindHeader {
				content, err := s.store.Read(cmd.Context(), f.FullPath)
				if err == nil {
					err = s.store.Write(cmd.Context(), output, content)
				}
				if err != nil {
					return err
				}
				continue
			}

			total++
			pointsPath := strings.TrimSuffix(output, filepath.Ext(output)) + ext
			inserted, err := s.instrument(cmd.Context(), f.FullPath, output, pointsPath)
			if err != nil {
				failed++
				logger.Warn("skipping file", "path", f.Path, "error", err)
				continue
			}
			logger.Info("instrumented", "path", f.Path, "inserted", inserted)
		}

		fmt.Printf("Instrumented %d of %d files into %s\n", total-failed, total, outAbs)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("output", "o", "autofree-out", "Directory receiving the instrumented tree")
	scanCmd.Flags().Bool("headers", false, "Copy .h files into the output tree")
}
