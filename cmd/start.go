package cmd

import (
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chip8/emu"
	"chip8/emu/cpu"
)

var startCmd = &cobra.Command{
	Use:   "start `path/ROM`",
	Short: "load and start the emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  Start,
}

// chip8 start 'path/to/ROM' -r 60 -c 700
func Start(cmd *cobra.Command, args []string) error {
	rom, err := ioutil.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	var policy cpu.Policy
	switch p := viper.GetString("on-unknown"); p {
	case "halt":
		policy = cpu.PolicyHalt
	case "skip":
		policy = cpu.PolicySkip
	default:
		return fmt.Errorf("invalid on-unknown policy %q (want halt or skip)", p)
	}

	cfg := emu.Config{
		RefreshRate: viper.GetInt("refresh"),
		ClockSpeed:  viper.GetInt("clock"),
		Scale:       viper.GetFloat64("scale"),
		Policy:      policy,
		Quirks: cpu.Quirks{
			ShiftUsesVY:     viper.GetBool("quirk-shift-vy"),
			JumpUsesVX:      viper.GetBool("quirk-jump-vx"),
			LoadStoreBumpsI: viper.GetBool("quirk-bump-i"),
		},
	}
	if cfg.RefreshRate < 1 || cfg.ClockSpeed < 1 || cfg.Scale < 1 {
		return fmt.Errorf("refresh, clock and scale must be positive")
	}

	e, err := emu.New(rom, cfg)
	if err != nil {
		return fmt.Errorf("starting the emulator: %w", err)
	}
	return e.Run()
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().IntP("refresh", "r", 60, "display refresh and timer rate in Hz")
	startCmd.Flags().IntP("clock", "c", 700, "instructions executed per second")
	startCmd.Flags().Float64P("scale", "s", 8, "window pixels per display pixel")
	startCmd.Flags().String("on-unknown", "halt", "unknown opcode policy: halt or skip")
	startCmd.Flags().Bool("quirk-shift-vy", false, "8XY6/8XYE shift VY instead of VX")
	startCmd.Flags().Bool("quirk-jump-vx", false, "BNNN jumps to NNN+VX instead of NNN+V0")
	startCmd.Flags().Bool("quirk-bump-i", false, "FX55/FX65 leave I at I+X+1")

	viper.BindPFlags(startCmd.Flags())
}
