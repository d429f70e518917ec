package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/bidbook/internal/dedupe"
	"github.com/sells-group/bidbook/internal/model"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf> [file.pdf...]",
	Short: "Extract proposer contact info from proposal PDFs",
	Long:  "Runs the full pipeline over local PDF files and prints the reconciled batch result.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		processor := newProcessor(cfg)

		proposals := make([]model.Proposal, 0, len(args))
		for _, path := range args {
			proposals = append(proposals, processor.ProcessFile(cmd.Context(), path, filepath.Base(path)))
		}

		deduplicated, mergeCount := dedupe.Reconcile(proposals)
		result := model.UploadResult{
			Proposals:      deduplicated,
			MergeCount:     mergeCount,
			TotalProcessed: len(proposals),
		}

		enc := json.NewEncoder(os.Stdout)
		if !extractJSON {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(result)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "compact JSON output")
	rootCmd.AddCommand(extractCmd)
}
