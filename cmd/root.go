package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chip8 [command]",
	Short: "Chip-8 emulator using Go",
	Long:  "A Chip-8 emulator that mimics the COSMAC VIP/Telmac 1800 interpreter: 4KB memory, 16 registers, a 16-level stack, a 64x32 monochrome display and two 60Hz timers.",
	Run:   Root,
}

func Root(cmd *cobra.Command, args []string) {
	fmt.Println("Enter command as `chip8 start /path/ROM`")
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chip8)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".chip8" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".chip8")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
