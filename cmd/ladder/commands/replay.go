package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitos/take_profit/internal/domain"
	"github.com/vitos/take_profit/internal/usecase"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	scriptFile  string
	stopOnError bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Apply a YAML command script and print the final state",
	Long: `Runs every command of a script against a fresh order form and prints
the final snapshot as JSON.

Script format:
  commands:
    - type: set_unit_price
      value: 100
    - type: enable
    - type: add_target
    - type: change_allocation
      target_id: 2
      value: 30
    - type: submit`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVar(&scriptFile, "script", "", "command script (YAML)")
	replayCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "abort on the first rejected command")
	replayCmd.MarkFlagRequired("script")
}

type replayScript struct {
	Commands []domain.Command `yaml:"commands"`
}

type replayOutput struct {
	Accepted bool                     `json:"accepted"`
	Rejected int                      `json:"rejected"`
	Snapshot domain.OrderFormSnapshot `json:"snapshot"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	_, log, form, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	script, err := loadScript(scriptFile)
	if err != nil {
		return err
	}

	out, err := replay(form, script, stopOnError, log)
	if err != nil {
		return err
	}
	return writeIndented(cmd.OutOrStdout(), out)
}

// replay applies the script in order. The verdict is the one of the last submit.
func replay(form *usecase.OrderForm, script *replayScript, stopOnError bool, log *zap.Logger) (*replayOutput, error) {
	out := &replayOutput{Accepted: true}
	for i, c := range script.Commands {
		res, err := form.Apply(c)
		if err != nil {
			log.Warn("Command rejected", zap.Int("index", i), zap.String("type", string(c.Type)), zap.Error(err))
			if stopOnError {
				return nil, fmt.Errorf("command %d (%s): %w", i, c.Type, err)
			}
			out.Rejected++
			continue
		}
		if c.Type == domain.CmdSubmit {
			out.Accepted = res.Accepted
		}
	}
	out.Snapshot = form.Snapshot()
	return out, nil
}

func loadScript(path string) (*replayScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var script replayScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("decode script %s: %w", path, err)
	}
	return &script, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
