/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var playedSongsNumber int
var playedSongsCmd = &cobra.Command{
	Use:   "played-songs <history_file> <yyyy-mm-dd>",
	Short: "Lists the songs played on a day",
	Long:  `Lists the distinct track URIs played on the given day, in the order they were first played.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printPlayedSongs(cmd.Context(), args[0], args[1], numberOrDefault(playedSongsNumber))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playedSongsCmd)

	playedSongsCmd.Flags().IntVarP(&playedSongsNumber, "number", "n", 0, "number of results to return (default is --limit)")
}

func printPlayedSongs(ctx context.Context, path, ds string, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	day, err := parseDay(ds)
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := loadHistory(ctx, svc, path)
	if err != nil {
		return err
	}

	played, err := svc.PlayedOn(entries, day, limit)
	if err != nil {
		return fmt.Errorf("played songs: %w", err)
	}

	out := Analysis{results: [][]string{{"Track URI"}}}
	for _, uri := range played {
		out.results = append(out.results, []string{uri})
	}
	out.summary = fmt.Sprintf("Played %d songs on %s", len(played), day.Format("2006-01-02"))
	fmt.Println(out)
	return nil
}
