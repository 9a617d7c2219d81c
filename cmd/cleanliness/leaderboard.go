package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/storage"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
)

func newLeaderboardCommand(root *rootOptions) *cobra.Command {
	var q application.LeaderboardQuery
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the classroom leaderboard from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg.Database, nil)
			if err != nil {
				return err
			}
			defer storage.Close(db)

			svc := application.NewLeaderboardService(
				storage.NewScoreRepository(db),
				storage.NewClassroomRepository(db),
				cfg.Leaderboard,
				nil,
			)
			board, err := svc.Leaderboard(cmd.Context(), cliAuth, q)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), board)
		},
	}
	cmd.Flags().StringVarP(&q.Period, "period", "p", "", "today, week, month, year or all")
	cmd.Flags().StringVarP(&q.GradeLevel, "grade", "g", "", "Only rank classrooms in this grade")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 0, "Maximum number of rows")
	return cmd
}

func printLeaderboard(w io.Writer, board *application.Leaderboard) error {
	if len(board.Standings) == 0 {
		_, err := fmt.Fprintf(w, "no classrooms scored in period %q\n", board.Period)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCLASSROOM\tNAME\tAVERAGE\tLATEST\tRATING\tTREND\tANALYSES")
	for _, s := range board.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t%d\n",
			s.Rank, s.ClassroomID, s.ClassroomName, s.AverageScore, s.LatestScore,
			s.LatestRating, s.Trend, s.AnalysisCount)
	}
	return tw.Flush()
}
