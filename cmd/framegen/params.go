package main

import (
	"github.com/chazu/framegen/pkg/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// paramsCmd represents the params command
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print resolved frame parameters and derived radii",
	Long: `
Resolves parameters from flags, FRAMEGEN_* environment variables and the
config file, converts them to centimetres and prints them with the derived
connector, sphere and bore radii.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paramSource(viper.GetViper()).Resolve()
		if err != nil {
			return err
		}
		b, err := params.Describe(p).YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
