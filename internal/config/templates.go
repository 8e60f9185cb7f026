package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# orb-trader configuration
trading:
  symbols:
    nifty:
      enabled: true
      step_size: 50
      lots: 1
      lot_size: 75
    banknifty:
      enabled: false
      step_size: 100
      lots: 1
      lot_size: 35

  risk_management:
    stop_loss_points: 30.0
    # 0 means 2x the stop distance
    target_points: 0.0
    breakout_buffer: 2.0
    use_atr_stop_loss: false
    atr_periods: 14
    atr_multiplier: 0.5
    atr_fallback: 30.0
    max_holding_period_minutes: 60
    max_entry_premium_pct: 5.0

  entry_filters:
    volume_confirmation: false
    volume_threshold: 1.2
    volume_periods: 10
    momentum_confirmation: false
    momentum_periods: 3
    momentum_tolerance: 0.05

  partial_exits:
    enabled: true
    exits:
      - time_minutes: 30
        min_profit_percentage: 25.0
        exit_percentage: 30.0
      - time_minutes: 45
        min_profit_percentage: 40.0
        exit_percentage: 50.0

  trailing_stop:
    enabled: true
    activation_percentage: 50.0
    trailing_percentage: 50.0

timing:
  market_open_time: "09:15"
  first_candle_minutes: 5
  square_off_time: "15:15"
  timer_interval_seconds: 2

monitoring:
  max_daily_trades: 5
  max_daily_loss: -2000.0

logging:
  level: info
  console_output: true
  log_trades: true

simulation:
  enabled: false
  seed: 42
  tick_interval_ms: 200
  start_prices:
    nifty: 105.0
    banknifty: 210.0
`

// WriteTemplate writes a commented template config.yaml into configDir.
func WriteTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil // never overwrite an existing config
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
