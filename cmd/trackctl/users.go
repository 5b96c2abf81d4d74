package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User profile operations"}

	// create
	var name, pin, color string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || pin == "" {
				return fmt.Errorf("--name and --pin required")
			}
			payload := map[string]interface{}{"name": name, "pin": pin}
			if color != "" {
				payload["color"] = color
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/profiles", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Profile name (required)")
	createCmd.Flags().StringVarP(&pin, "pin", "p", "", "Profile PIN (required)")
	createCmd.Flags().StringVarP(&color, "color", "c", "", "Avatar color (assigned automatically when empty)")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("pin")
	usersCmd.AddCommand(createCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active profiles (PIN hashes redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/profiles", apiFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(listCmd)

	// verify
	var verifyPin string
	verifyCmd := &cobra.Command{
		Use:   "verify PROFILE_ID",
		Short: "Verify a profile PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verifyPin == "" {
				return fmt.Errorf("--pin required")
			}
			url := fmt.Sprintf("%s/api/profiles/%s/verify", apiFlag, args[0])
			data, err := doPostJSON(url, map[string]string{"pin": verifyPin})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	verifyCmd.Flags().StringVarP(&verifyPin, "pin", "p", "", "PIN to verify (required)")
	_ = verifyCmd.MarkFlagRequired("pin")
	usersCmd.AddCommand(verifyCmd)

	// change-pin
	var oldPin, newPin string
	pinCmd := &cobra.Command{
		Use:   "change-pin PROFILE_ID",
		Short: "Change a profile PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if oldPin == "" || newPin == "" {
				return fmt.Errorf("--old and --new required")
			}
			url := fmt.Sprintf("%s/api/profiles/%s/pin", apiFlag, args[0])
			data, err := doPostJSON(url, map[string]string{"oldPin": oldPin, "newPin": newPin})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	pinCmd.Flags().StringVarP(&oldPin, "old", "o", "", "Current PIN (required)")
	pinCmd.Flags().StringVarP(&newPin, "new", "w", "", "New PIN (required)")
	usersCmd.AddCommand(pinCmd)

	// delete (soft)
	deleteCmd := &cobra.Command{
		Use:   "delete PROFILE_ID",
		Short: "Deactivate a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doDelete(fmt.Sprintf("%s/api/profiles/%s", apiFlag, args[0]))
		},
	}
	usersCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(usersCmd)
}

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}
