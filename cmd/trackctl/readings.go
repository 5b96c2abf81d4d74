package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chasebfreeman/track-analyzer-pro/internal/fetchguard"
)

func init() {
	readingsCmd := &cobra.Command{Use: "readings", Short: "Reading operations"}

	// list
	var year string
	var grouped bool
	listCmd := &cobra.Command{
		Use:   "list TRACK_ID",
		Short: "List readings for a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/tracks/%s/readings", apiFlag, args[0])
			sep := "?"
			if year != "" {
				url += sep + "year=" + year
				sep = "&"
			}
			if grouped {
				url += sep + "grouped=true"
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&year, "year", "y", "", "Filter by year")
	listCmd.Flags().BoolVarP(&grouped, "grouped", "g", false, "Group by track-local day")
	readingsCmd.AddCommand(listCmd)

	// create from a JSON document
	var file string
	createCmd := &cobra.Command{
		Use:   "create TRACK_ID",
		Short: "Create a reading from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(file)
			if err != nil {
				return err
			}
			var payload map[string]interface{}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("invalid reading json: %w", err)
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/tracks/%s/readings", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&file, "file", "f", "-", "Reading JSON file")
	readingsCmd.AddCommand(createCmd)

	// update
	var patchFile string
	updateCmd := &cobra.Command{
		Use:   "update READING_ID",
		Short: "Apply a partial update from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(patchFile)
			if err != nil {
				return err
			}
			var payload map[string]interface{}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("invalid patch json: %w", err)
			}
			data, err := doJSON(http.MethodPatch, fmt.Sprintf("%s/api/readings/%s", apiFlag, args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&patchFile, "file", "f", "-", "Patch JSON file")
	readingsCmd.AddCommand(updateCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete READING_ID",
		Short: "Delete a reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete(fmt.Sprintf("%s/api/readings/%s", apiFlag, args[0]))
		},
	}
	readingsCmd.AddCommand(deleteCmd)

	// years
	yearsCmd := &cobra.Command{
		Use:   "years [TRACK_ID]",
		Short: "List years that have readings, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/years", apiFlag)
			if len(args) == 1 {
				url += "?trackId=" + args[0]
			}
			data, err := doGet(url)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	readingsCmd.AddCommand(yearsCmd)

	// watch: poll the grouped readings and reprint on change. Polls run in
	// the background; a slow response that arrives after a newer poll
	// started holds a stale token and is dropped instead of overwriting
	// fresher output.
	var interval time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch TRACK_ID",
		Short: "Poll readings for a track, printing updates as they land",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/tracks/%s/readings?grouped=true", apiFlag, args[0])

			var guard fetchguard.Guard
			results := make(chan string, 1)
			poll := func() {
				tok := guard.Next()
				go func() {
					data, err := doGet(url)
					if err != nil {
						fmt.Fprintln(os.Stderr, err)
						return
					}
					if !guard.Latest(tok) {
						return
					}
					select {
					case results <- string(data):
					default:
					}
				}()
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			poll()

			var last string
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case body := <-results:
					if body != last {
						_, _ = fmt.Fprintln(os.Stdout, body)
						last = body
					}
				case <-ticker.C:
					poll()
				}
			}
		},
	}
	watchCmd.Flags().DurationVarP(&interval, "interval", "i", 5*time.Second, "Poll interval")
	readingsCmd.AddCommand(watchCmd)

	rootCmd.AddCommand(readingsCmd)
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return readAllStdin()
	}
	return os.ReadFile(path)
}
