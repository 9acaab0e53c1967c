package main

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/seistools/nrl/resp"
)

func newResponseCommand() *cobra.Command {
	var sensorKeys, dataloggerKeys []string

	cmd := &cobra.Command{
		Use:   "response --sensor KEYS --datalogger KEYS",
		Short: "Combine a sensor and a data logger into one channel response",
		Long: `Resolve both key paths, splice the sensor's transducer stage into the
data logger's digitization chain, and print the combined response with
its recalculated overall sensitivity.

Keys are comma-separated, one element per catalog level, for example:

  nrl response \
    --sensor 'Nanometrics,Trillium Compact,120 s' \
    --datalogger 'REF TEK,RT 130 & 130-SMA,1,200'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			combined, err := client.Response(dataloggerKeys, sensorKeys)
			if err != nil {
				return err
			}

			if jsonOut {
				fmt.Println(oj.JSON(responseJSON(combined), 2))
				return nil
			}
			fmt.Println(combined)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sensorKeys, "sensor", nil, "sensor key path, comma separated")
	cmd.Flags().StringSliceVar(&dataloggerKeys, "datalogger", nil, "data logger key path, comma separated")
	_ = cmd.MarkFlagRequired("sensor")
	_ = cmd.MarkFlagRequired("datalogger")
	return cmd
}

func responseJSON(r *resp.Response) map[string]any {
	stages := make([]map[string]any, 0, len(r.Stages))
	for _, st := range r.Stages {
		stages = append(stages, map[string]any{
			"sequence":     st.Sequence,
			"type":         st.Type,
			"input_units":  st.InputUnits,
			"output_units": st.OutputUnits,
			"gain":         st.Gain,
		})
	}
	return map[string]any{
		"input_units":  r.InputUnits,
		"output_units": r.OutputUnits,
		"sensitivity":  r.Sensitivity,
		"frequency":    r.Frequency,
		"stages":       stages,
	}
}
