package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/framegen/pkg/params"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "framegen",
	Short: "Generate printable lattice frames from triangle meshes",
	Long: `
Turns a triangle mesh into a lattice frame: one printable connector hub per
vertex and one rod per edge, with sockets, bores and binary hub markings.

Inputs are STL/OBJ meshes or frame scripts. All lengths are centimetres
unless a unit is given.

framegen generate --mesh dome.stl --mesh-units mm --out build/`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.framegen.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Float64("rod-diameter", 0, "rod diameter (default 0.3 cm)")
	pf.Float64("connector-length", 0, "socket length beyond the hub sphere (default 1.5 cm)")
	pf.Float64("wall-thickness", 0, "socket wall thickness (default 0.2 cm)")
	pf.Float64("clearance", 0, "print clearance between rod and socket (default 0.015 cm)")
	pf.String("units", params.UnitCentimetre, "units of the parameter values: mm, cm, m, in")

	bind(pf.Lookup("log-level"), "logLevel")
	bind(pf.Lookup("rod-diameter"), "rodDiameter")
	bind(pf.Lookup("connector-length"), "connectorLength")
	bind(pf.Lookup("wall-thickness"), "wallThickness")
	bind(pf.Lookup("clearance"), "clearance")
	bind(pf.Lookup("units"), "units")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".framegen")
	}

	viper.SetEnvPrefix("FRAMEGEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log := newLogger()
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
}

func bind(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// paramSource collects frame parameters from flags, environment and
// config file. Only keys that were actually given are set, so an explicit
// zero reaches validation instead of falling back to a default.
func paramSource(v *viper.Viper) params.Source {
	src := params.Source{Units: v.GetString("units")}
	for key, dst := range src.Fields() {
		if v.IsSet(key) {
			*dst = params.Float(v.GetFloat64(key))
		}
	}
	return src
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("logLevel")))
	if err != nil || viper.GetString("logLevel") == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}
