package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/models"
	"github.com/Dosada05/tourney/repositories"
	"github.com/Dosada05/tourney/services"
	"github.com/urfave/cli/v2"
)

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "print the bracket for a list of competitors without storing it",
		ArgsUsage: "NAME [NAME...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read competitors from a JSON array of {id, name}"},
			&cli.BoolFlag{Name: "json", Usage: "print matches as JSON"},
		},
		Action: func(c *cli.Context) error {
			competitors, err := previewInput(c)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			svc := services.NewBracketService(repositories.NewMemoryStore(), nil, logger)
			matches, err := svc.PreviewBracket(c.Context, competitors)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}
			return printBracket(c.App.Writer, competitors, matches)
		},
	}
}

func previewInput(c *cli.Context) ([]models.Competitor, error) {
	if path := c.String("file"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read competitors: %w", err)
		}
		var competitors []models.Competitor
		if err := json.Unmarshal(raw, &competitors); err != nil {
			return nil, fmt.Errorf("decode competitors: %w", err)
		}
		return competitors, nil
	}

	names := c.Args().Slice()
	if len(names) == 0 {
		return nil, errors.New("pass competitor names as arguments or --file")
	}
	competitors := make([]models.Competitor, len(names))
	for i, name := range names {
		competitors[i] = models.Competitor{ID: i + 1, Name: name}
	}
	return competitors, nil
}

func printBracket(w io.Writer, competitors []models.Competitor, matches []*models.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintf(w, "%s wins by walkover\n", competitors[0].Name)
		return err
	}

	names := make(map[int]string, len(competitors))
	for _, c := range competitors {
		names[c.ID] = c.Name
	}
	slot := func(id *int) string {
		if id == nil {
			return "-"
		}
		return names[*id]
	}
	numbers := make(map[string]int, len(matches))
	for _, m := range matches {
		numbers[m.ID.String()] = m.Number
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ROUND\tMATCH\tTEAM 1\tTEAM 2\tNEXT\n")
	for round := 1; round <= brackets.RoundsFor(len(competitors)); round++ {
		for _, m := range matches {
			if m.Round != round {
				continue
			}
			next := "-"
			if m.NextMatchID != nil {
				next = "#" + strconv.Itoa(numbers[m.NextMatchID.String()])
			}
			fmt.Fprintf(tw, "%d\t#%d\t%s\t%s\t%s\n", m.Round, m.Number, slot(m.Team1ID), slot(m.Team2ID), next)
		}
	}
	return tw.Flush()
}
