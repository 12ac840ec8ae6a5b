package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitos/take_profit/internal/config"
	"github.com/vitos/take_profit/internal/infrastructure/logger"
	"github.com/vitos/take_profit/internal/usecase"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "ladder",
	Short:        "Take-profit ladder engine",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config/config.yaml", "config file (empty for defaults)")
}

// bootstrap loads config and logger and builds a fresh order form.
func bootstrap() (*config.Config, *zap.Logger, *usecase.OrderForm, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	order := usecase.NewOrderContext(cfg.Order.Side, cfg.Order.UnitPrice, cfg.Order.PositionAmount)
	form := usecase.NewOrderForm(order, cfg.Ladder, log)
	return cfg, log, form, nil
}
