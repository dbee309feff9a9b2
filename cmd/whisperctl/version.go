package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/adapterinfo"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
)

func newVersionCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine identifier and build details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]any{
				"engine":           adapterinfo.EngineVersion(),
				"adapter":          adapterinfo.Info.Slug,
				"adapter_version":  adapterinfo.Version(),
				"native_available": engine.NativeAvailable(),
			}
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return printJSON(out, info)
			}
			fmt.Fprintln(out, adapterinfo.EngineVersion())
			return nil
		},
	}
}
