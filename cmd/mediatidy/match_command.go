package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediatidy/internal/batch"
	"mediatidy/internal/namematch"
)

type matchJSON struct {
	Target    string `json:"target"`
	Candidate string `json:"candidate"`
	Index     int    `json:"index"`
	Score     int    `json:"score"`
}

func newMatchCommand() *cobra.Command {
	var dir string
	var all bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match <target> [candidates...]",
		Short: "Pick the candidate name most similar to a target",
		Long: "Scores each candidate against the target (case-insensitive, 0-100) and prints the best one.\n" +
			"Candidates come from the arguments or, with --dir, from the entries of a directory.",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			candidates := args[1:]
			if strings.TrimSpace(dir) != "" {
				if len(candidates) > 0 {
					return batch.Wrap(batch.ErrValidation, "match", "pass candidates or --dir, not both", nil)
				}
				listed, err := listEntryNames(dir)
				if err != nil {
					return err
				}
				candidates = listed
			}

			if !all {
				result, err := namematch.Match(target, candidates)
				if err != nil {
					return matchError(err)
				}
				if asJSON {
					return writeJSON(cmd, toMatchJSON(target, result))
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Label)
				return nil
			}

			ranked, err := namematch.Rank(target, candidates)
			if err != nil {
				return matchError(err)
			}
			if asJSON {
				out := make([]matchJSON, len(ranked))
				for i, r := range ranked {
					out[i] = toMatchJSON(target, r)
				}
				return writeJSON(cmd, out)
			}
			rows := make([][]string, len(ranked))
			for i, r := range ranked {
				rows[i] = []string{strconv.Itoa(i + 1), r.Label, strconv.Itoa(r.Score)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), tableView{
				headers: []string{"#", "Candidate", "Score"},
				rows:    rows,
				aligns:  []columnAlignment{alignRight, alignLeft, alignRight},
			}.render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Use the entries of this directory as candidates")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every candidate ranked by score")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func toMatchJSON(target string, r namematch.Result) matchJSON {
	return matchJSON{Target: target, Candidate: r.Label, Index: r.Index, Score: r.Score}
}

func matchError(err error) error {
	if errors.Is(err, namematch.ErrNoCandidates) {
		return batch.Wrap(batch.ErrNoCandidates, "match", "no candidates given", nil)
	}
	return err
}

// listEntryNames returns the non-hidden entry names of dir in name order.
func listEntryNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, batch.Wrap(batch.Classify(err), "match", "list "+dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
