package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

func newScoreCommand() *cobra.Command {
	var (
		minConfidence float64
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "score [detections.json]",
		Short: "Score a detections file without calling the vision service",
		Long: `Score reads detections as a JSON array, or as an object with a
"detections" field like the vision service returns, and prints the
category breakdown, total and rating. "-" reads standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detections, err := readDetections(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			scoring := application.DefaultAppConfig().Scoring
			scoring.MinConfidence = minConfidence
			engine, err := application.NewEngineFromConfig(scoring, application.NewDefaultScorerRegistry())
			if err != nil {
				return err
			}
			score := engine.ComputeScore(detections)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(score)
			}
			return printScore(cmd.OutOrStdout(), score)
		},
	}
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Drop detections below this confidence")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full score record as JSON")
	return cmd
}

func readDetections(stdin io.Reader, path string) ([]domain.Detection, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read detections: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []domain.Detection
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: parse detections: %v", domain.ErrInvalidInput, err)
		}
		return list, nil
	}
	var wrapped struct {
		Detections []domain.Detection `json:"detections"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: parse detections: %v", domain.ErrInvalidInput, err)
	}
	return wrapped.Detections, nil
}

func printScore(w io.Writer, score domain.CleanlinessScore) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range domain.ScoreCategories {
		v, err := score.Breakdown.Get(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%.2f / %.0f\n", c, v, domain.MaxCategoryScore)
	}
	fmt.Fprintf(tw, "total\t%.2f / %.0f\n", score.Total, domain.MaxTotalScore)
	fmt.Fprintf(tw, "rating\t%s\n", score.Rating)
	fmt.Fprintf(tw, "detections\t%d\n", len(score.Detections))
	return tw.Flush()
}
