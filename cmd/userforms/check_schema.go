package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-userforms/pkg/validation"
)

var errInvalidSchema = errors.New("schema is invalid")

func newCheckSchemaCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check-schema <file>",
		Short: "Validate a registration schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema: %w", err)
			}
			result := validation.CheckSchema(data, args[0])

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if result.Valid {
				fmt.Fprintf(out, "%s: ok (%d fields)\n", args[0], len(result.Fields))
				for _, id := range result.Fields {
					fmt.Fprintf(out, "  %s\n", id)
				}
			} else {
				for _, issue := range result.Issues {
					if issue.Field != "" {
						fmt.Fprintf(out, "%s: %s: %s\n", args[0], issue.Field, issue.Message)
						continue
					}
					fmt.Fprintf(out, "%s: %s\n", args[0], issue.Message)
				}
			}

			if !result.Valid {
				return errInvalidSchema
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
