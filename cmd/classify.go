package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/heist/internal/adapters/detector"
	"github.com/okian/heist/internal/domain/collision"
	"github.com/okian/heist/internal/domain/gesture"
	"github.com/okian/heist/internal/domain/types"
	"github.com/spf13/cobra"
)

var (
	classifyBlink   float64
	classifyMouth   float64
	classifyEyebrow float64
	classifyMeasure bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a face-mesh landmark document",
	Long: `Read one face-mesh helper response ({"faces":[{"landmarks":[...]}]})
from a file, or stdin when the file is "-" or omitted, and print the
detected gestures and the resulting game action as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Float64Var(&classifyBlink, "blink-threshold", gesture.BlinkThreshold, "Maximum lid gap counted as a closed eye")
	classifyCmd.Flags().Float64Var(&classifyMouth, "mouth-threshold", gesture.MouthOpenThreshold, "Minimum lip gap counted as an open mouth")
	classifyCmd.Flags().Float64Var(&classifyEyebrow, "eyebrow-threshold", gesture.EyebrowThreshold, "Minimum brow offset counted as raised")
	classifyCmd.Flags().BoolVar(&classifyMeasure, "measurements", false, "Include the raw distances in the output")
	rootCmd.AddCommand(classifyCmd)
}

// classifyOutput is the document printed by the classify command.
type classifyOutput struct {
	types.GestureResponse
	Measurements *gesture.Measurements `json:"measurements,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open landmarks: %w", err)
		}
		defer f.Close()
		in = f
	}

	set, err := detector.DecodeSet(in)
	if err != nil {
		return fmt.Errorf("decode landmarks: %w", err)
	}

	classifier := gesture.New(
		gesture.WithBlinkThreshold(classifyBlink),
		gesture.WithMouthThreshold(classifyMouth),
		gesture.WithEyebrowThreshold(classifyEyebrow),
	)
	signals := classifier.Classify(set)

	out := classifyOutput{
		GestureResponse: types.GestureResponse{
			Gestures:     signals,
			FaceDetected: set.Present(),
			Action:       collision.ActionFor(signals),
		},
	}
	if classifyMeasure {
		m := gesture.Measure(set)
		out.Measurements = &m
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
