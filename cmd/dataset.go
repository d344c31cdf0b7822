package cmd

import (
	"fmt"
	"os"

	"github.com/garage-labs/carscope/internal/dataset"
	"github.com/spf13/cobra"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Damage detection dataset tools",
		Long: `Tools for preparing vehicle damage detection training data.

Downloads annotation files from HuggingFace, caching them locally, and
converts annotated photo sets into the YOLO layout used for training
damage detection models.`,
	}

	cmd.AddCommand(newDatasetDownloadCmd())
	cmd.AddCommand(newDatasetConvertCmd())

	return cmd
}

func newDatasetDownloadCmd() *cobra.Command {
	var repo string
	var cacheDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "download FILE",
		Short: "Download an annotation file from HuggingFace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			downloader := dataset.NewDownloader(dataset.DownloadConfig{
				Repo:          repo,
				CacheDir:      cacheDir,
				ForceDownload: force,
				Token:         os.Getenv("HF_TOKEN"),
			})

			path, err := downloader.Download(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Dataset file available at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", dataset.HFDatasetRepo, "HuggingFace dataset repository")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory (default ~/.cache/huggingface/datasets)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-download even if cached")

	return cmd
}

func newDatasetConvertCmd() *cobra.Command {
	var imageDir string
	var outputDir string
	var sampleSize int
	var damagedOnly bool

	cmd := &cobra.Command{
		Use:   "convert ANNOTATIONS",
		Short: "Convert annotations to the YOLO training layout",
		Long: `Reads damage annotations from a JSONL or Parquet file and writes a
YOLO dataset: train/val/test splits with images and normalized label
files, plus a data.yaml describing the damage classes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := dataset.NewLoader(args[0])

			var records []dataset.AnnotationRecord
			var err error
			if sampleSize > 0 {
				records, err = loader.LoadSample(sampleSize)
			} else if damagedOnly {
				records, err = loader.LoadWithFilter(func(r *dataset.AnnotationRecord) bool {
					return r.HasKnownDamage()
				})
			} else {
				records, err = loader.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load annotations: %w", err)
			}

			stats, err := dataset.NewConverter(imageDir, outputDir).Convert(records)
			if err != nil {
				return err
			}

			fmt.Printf("Converted %d images (%d skipped) into %s\n", stats.Converted, stats.Skipped, outputDir)
			for split, count := range stats.PerSplit {
				fmt.Printf("  %s: %d\n", split, count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imageDir, "image-dir", "images", "Directory containing the source photos")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "datasets/yolo_damage", "Output directory for the YOLO layout")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Convert only the first N records")
	cmd.Flags().BoolVar(&damagedOnly, "damaged-only", false, "Convert only images with at least one known damage annotation")

	return cmd
}
