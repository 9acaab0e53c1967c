package main

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func newRespCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resp {sensor|datalogger} KEY...",
		Short: "Print the raw RESP text for a fully-specified instrument",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("expected a kind and at least one key")
			}
			if args[0] != "sensor" && args[0] != "datalogger" {
				return fmt.Errorf("kind must be \"sensor\" or \"datalogger\", got %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			kind, keys := args[0], args[1:]
			var text string
			if kind == "sensor" {
				text, err = client.SensorRESP(keys...)
			} else {
				text, err = client.DataloggerRESP(keys...)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				fmt.Println(oj.JSON(map[string]any{"kind": kind, "keys": keys, "resp": text}, 2))
				return nil
			}
			fmt.Print(text)
			return nil
		},
	}
}
