package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	tracksCmd := &cobra.Command{Use: "tracks", Short: "Track operations"}

	// create
	var name, location string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a track",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			payload := map[string]interface{}{"name": name}
			if location != "" {
				payload["location"] = location
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/tracks", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Track name (required)")
	createCmd.Flags().StringVarP(&location, "location", "l", "", "Track location")
	_ = createCmd.MarkFlagRequired("name")
	tracksCmd.AddCommand(createCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/tracks", apiFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	tracksCmd.AddCommand(listCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete TRACK_ID",
		Short: "Delete a track and all of its readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete(fmt.Sprintf("%s/api/tracks/%s", apiFlag, args[0]))
		},
	}
	tracksCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(tracksCmd)
}
