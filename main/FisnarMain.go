package main

import (
	"fmt"
	"os"
	"strings"

	"fisnar/common/config"
	"fisnar/common/file"
	"fisnar/common/logger"
	"fisnar/common/utils/sys"
	"fisnar/project"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	outFile    string
	showReport bool
	doUpload   bool
)

var rootCmd = &cobra.Command{
	Use:   "fisnarconv <gcode-file>",
	Short: "Convert a gcode motion program into Fisnar dispenser commands",
	Long: `Converts a sliced gcode motion program into the command set of a
Fisnar liquid-dispensing robot, writes it as a Fisnar CSV program, and can
upload it to the robot's serial controller.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"machine profile file (yaml)")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "",
		"output CSV path (default: gcode file with .csv extension)")
	rootCmd.Flags().BoolVar(&showReport, "report", false,
		"print a conversion summary")
	rootCmd.Flags().BoolVar(&doUpload, "upload", false,
		"upload the converted program over serial")
	rootCmd.Flags().Bool("continuous", false,
		"keep a single output energized across line segments")
	rootCmd.Flags().Bool("no-io-card", false,
		"convert for a machine without an I/O card")
	rootCmd.Flags().String("port", "", "serial port of the Fisnar controller")
	rootCmd.Flags().Int("baud", 0, "serial baud rate")

}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading machine profile: %v", err)
	}
	if cmd.Flags().Changed("continuous") {
		cfg.ContinuousExtrusion, _ = cmd.Flags().GetBool("continuous")
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Serial.Port = port
	}
	if baud, _ := cmd.Flags().GetInt("baud"); baud != 0 {
		cfg.Serial.Baud = baud
	}
	if noIO, _ := cmd.Flags().GetBool("no-io-card"); noIO {
		cfg.IOCard = false
	}

	gcodePath := args[0]
	gcode, err := os.ReadFile(gcodePath)
	if err != nil {
		return err
	}

	converter := project.NewConverter()
	converter.Set_print_surface(project.PrintSurface{
		XMin: cfg.Surface.XMin,
		XMax: cfg.Surface.XMax,
		YMin: cfg.Surface.YMin,
		YMax: cfg.Surface.YMax,
		ZMax: cfg.Surface.ZMax,
	})
	outputs := cfg.ExtruderOutputs
	for len(outputs) < 4 {
		outputs = append(outputs, 0)
	}
	converter.Set_extruder_outputs(outputs[0], outputs[1], outputs[2], outputs[3])
	if cfg.IOCard {
		converter.Set_conversion_mode(project.IO_CARD)
	} else {
		converter.Set_conversion_mode(project.NO_IO_CARD)
	}
	converter.Set_continuous_extrusion(cfg.ContinuousExtrusion)
	converter.Set_gcode(string(gcode))

	program, err := converter.Convert()
	if err != nil {
		return err
	}

	if outFile == "" {
		outFile = strings.TrimSuffix(gcodePath, ".gcode") + ".csv"
	}
	if err := file.WriteFileWithSync(outFile, []byte(program.To_csv())); err != nil {
		return err
	}
	logger.Infof("wrote %d Fisnar commands to %s", len(program), outFile)

	frames := project.EncodeProgram(program, cfg.ContinuousExtrusion)

	if showReport {
		report, err := project.BuildReport(program, frames, gcodePath)
		if err != nil {
			return err
		}
		fmt.Print(report)
	}

	if doUpload {
		uploader := project.NewSerialUploader(cfg.Serial.Port, cfg.Serial.Baud)
		if err := uploader.Connect(); err != nil {
			return err
		}
		defer uploader.Disconnect()
		if err := uploader.Upload_frames(frames); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	logger.InitLogger(logger.InfoLevel, logger.DefaultLogFile, 10, 3, 28)
	defer logger.Sync()
	logger.Debugf("main goroutine %d running", sys.GetGID())

	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
