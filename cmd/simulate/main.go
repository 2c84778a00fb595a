// Command simulate drives scripted pose scenarios against a running
// vigil server. It posts synthetic landmark frames in real time so the
// server's timing rules (debounce, stay-down timeout, cooldown) behave
// exactly as they would with a live camera pipeline.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/vigil/internal/domain/pose"
)

var (
	flagAddr     string
	flagStream   string
	flagFPS      int
	flagScenario string
)

func main() {
	root := &cobra.Command{
		Use:   "simulate",
		Short: "Post synthetic pose frames to a vigil server",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, ok := scenarios[flagScenario]
			if !ok {
				return fmt.Errorf("unknown scenario %q", flagScenario)
			}
			return run(steps)
		},
	}

	root.Flags().StringVar(&flagAddr, "addr", "http://localhost:9080", "server base URL")
	root.Flags().StringVar(&flagStream, "stream", "sim-0", "stream ID to post as")
	root.Flags().IntVar(&flagFPS, "fps", 10, "frames per second to post")
	root.Flags().StringVar(&flagScenario, "scenario", "fall", "scenario: normal, fall, stay-down, recovery, absent")

	if err := root.Execute(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// step is one phase of a scenario: a pose template held for a duration.
// A nil joints template means no person in frame.
type step struct {
	name     string
	joints   *pose.Joints
	duration time.Duration
}

var scenarios = map[string][]step{
	"normal": {
		{name: "standing", joints: standing(), duration: 10 * time.Second},
	},
	"fall": {
		{name: "standing", joints: standing(), duration: 5 * time.Second},
		{name: "lying", joints: lying(), duration: 3 * time.Second},
	},
	"stay-down": {
		{name: "standing", joints: standing(), duration: 5 * time.Second},
		{name: "lying", joints: lying(), duration: 8 * time.Second},
	},
	"recovery": {
		{name: "standing", joints: standing(), duration: 5 * time.Second},
		{name: "lying", joints: lying(), duration: 3 * time.Second},
		{name: "standing", joints: standing(), duration: 5 * time.Second},
	},
	"absent": {
		{name: "standing", joints: standing(), duration: 3 * time.Second},
		{name: "empty", joints: nil, duration: 5 * time.Second},
	},
}

type framePayload struct {
	FrameID       string       `json:"frame_id"`
	StreamID      string       `json:"stream_id"`
	TS            string       `json:"ts"`
	PersonPresent bool         `json:"person_present"`
	Landmarks     *pose.Joints `json:"landmarks,omitempty"`
}

func run(steps []step) error {
	client := &http.Client{Timeout: 5 * time.Second}
	interval := time.Second / time.Duration(flagFPS)

	for _, s := range steps {
		fmt.Printf("phase %s for %s\n", s.name, s.duration)
		deadline := time.Now().Add(s.duration)
		for time.Now().Before(deadline) {
			if err := post(client, s.joints); err != nil {
				return err
			}
			time.Sleep(interval)
		}
	}
	return nil
}

func post(client *http.Client, joints *pose.Joints) error {
	p := framePayload{
		FrameID:       uuid.NewString(),
		StreamID:      flagStream,
		TS:            time.Now().UTC().Format(time.RFC3339),
		PersonPresent: joints != nil,
		Landmarks:     joints,
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	resp, err := client.Post(flagAddr+"/frames", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to post frame: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server rejected frame: %s", resp.Status)
	}
	return nil
}

func lm(x, y float64) *pose.Landmark {
	return &pose.Landmark{X: x, Y: y, Visibility: 1}
}

// standing is an upright subject centered in frame.
func standing() *pose.Joints {
	return &pose.Joints{
		Nose:          lm(0.50, 0.10),
		LeftShoulder:  lm(0.45, 0.25),
		RightShoulder: lm(0.55, 0.25),
		LeftHip:       lm(0.46, 0.50),
		RightHip:      lm(0.54, 0.50),
		LeftKnee:      lm(0.46, 0.70),
		RightKnee:     lm(0.54, 0.70),
		LeftAnkle:     lm(0.46, 0.90),
		RightAnkle:    lm(0.54, 0.90),
		LeftWrist:     lm(0.40, 0.45),
		RightWrist:    lm(0.60, 0.45),
	}
}

// lying is a subject flat on the floor across the frame.
func lying() *pose.Joints {
	return &pose.Joints{
		Nose:          lm(0.15, 0.82),
		LeftShoulder:  lm(0.25, 0.80),
		RightShoulder: lm(0.25, 0.86),
		LeftHip:       lm(0.50, 0.80),
		RightHip:      lm(0.50, 0.86),
		LeftKnee:      lm(0.65, 0.82),
		RightKnee:     lm(0.65, 0.86),
		LeftAnkle:     lm(0.80, 0.82),
		RightAnkle:    lm(0.80, 0.86),
		LeftWrist:     lm(0.35, 0.83),
		RightWrist:    lm(0.35, 0.87),
	}
}
