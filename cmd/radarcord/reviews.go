package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/spf13/cobra"
)

var reviewsJSON bool

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "List the reviews your bot has on Radarcord",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _, err := loadConfig()
		if err != nil {
			return err
		}

		engine, err := startEngine(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer engine.Stop()

		reviews, err := engine.Reviews(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch reviews: %w", err)
		}

		return printReviews(cmd.OutOrStdout(), reviews, reviewsJSON)
	},
}

func printReviews(w io.Writer, reviews []radarcord.Review, jsonFormat bool) error {
	if jsonFormat {
		output, err := json.Marshal(reviews)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	if len(reviews) == 0 {
		fmt.Fprintln(w, "No reviews yet")
		return nil
	}

	total := 0
	for _, r := range reviews {
		total += r.Stars
	}
	avg := float64(total) / float64(len(reviews))
	fmt.Fprintf(w, "%s %s, average %s stars\n",
		humanize.Comma(int64(len(reviews))),
		pluralize(len(reviews), "review", "reviews"),
		humanize.FtoaWithDigits(avg, 2))

	for _, r := range reviews {
		fmt.Fprintf(w, "  %s  by %s: %s\n", stars(r.Stars), r.UserID, r.Content)
	}
	return nil
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func init() {
	reviewsCmd.Flags().BoolVar(&reviewsJSON, "json", false, "Output in JSON format")
}
