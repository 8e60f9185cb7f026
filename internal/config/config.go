// Package config provides configuration management for the trading engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"

	apperrors "orb-trader/internal/errors"
)

// Config holds all application configuration. It is loaded once at session
// start and never hot-reloaded mid-session.
type Config struct {
	Trading    TradingConfig    `mapstructure:"trading"`
	Timing     TimingConfig     `mapstructure:"timing"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// TradingConfig holds the strategy configuration.
type TradingConfig struct {
	Symbols        map[string]SymbolConfig `mapstructure:"symbols"`
	RiskManagement RiskConfig              `mapstructure:"risk_management"`
	EntryFilters   FilterConfig            `mapstructure:"entry_filters"`
	PartialExits   PartialExitConfig       `mapstructure:"partial_exits"`
	TrailingStop   TrailingConfig          `mapstructure:"trailing_stop"`
}

// SymbolConfig describes one tradable instrument.
type SymbolConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	StepSize int  `mapstructure:"step_size"`
	Lots     int  `mapstructure:"lots"`
	LotSize  int  `mapstructure:"lot_size"`
}

// RiskConfig holds per-position risk parameters.
type RiskConfig struct {
	StopLossPoints    float64 `mapstructure:"stop_loss_points"`
	TargetPoints      float64 `mapstructure:"target_points"` // 0 means 2x stop distance
	BreakoutBuffer    float64 `mapstructure:"breakout_buffer"`
	UseATRStopLoss    bool    `mapstructure:"use_atr_stop_loss"`
	ATRPeriods        int     `mapstructure:"atr_periods"`
	ATRMultiplier     float64 `mapstructure:"atr_multiplier"`
	ATRFallback       float64 `mapstructure:"atr_fallback"`
	MaxHoldingMinutes int     `mapstructure:"max_holding_period_minutes"`
	MaxEntryPremium   float64 `mapstructure:"max_entry_premium_pct"`
}

// FilterConfig holds entry-confirmation filter parameters.
type FilterConfig struct {
	VolumeConfirmation   bool    `mapstructure:"volume_confirmation"`
	VolumeThreshold      float64 `mapstructure:"volume_threshold"`
	VolumePeriods        int     `mapstructure:"volume_periods"`
	MomentumConfirmation bool    `mapstructure:"momentum_confirmation"`
	MomentumPeriods      int     `mapstructure:"momentum_periods"`
	MomentumTolerance    float64 `mapstructure:"momentum_tolerance"`
}

// PartialExitConfig holds the scheduled partial-exit ladder.
type PartialExitConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Exits   []PartialExitStep `mapstructure:"exits"`
}

// PartialExitStep is one rung of the exit ladder.
type PartialExitStep struct {
	TimeMinutes         int     `mapstructure:"time_minutes"`
	MinProfitPercentage float64 `mapstructure:"min_profit_percentage"`
	ExitPercentage      float64 `mapstructure:"exit_percentage"`
}

// TrailingConfig holds trailing-stop parameters.
type TrailingConfig struct {
	Enabled              bool    `mapstructure:"enabled"`
	ActivationPercentage float64 `mapstructure:"activation_percentage"` // % of target profit
	TrailingPercentage   float64 `mapstructure:"trailing_percentage"`   // % of open profit
}

// TimingConfig holds session timing parameters (IST wall clock).
type TimingConfig struct {
	MarketOpenTime     string `mapstructure:"market_open_time"`
	FirstCandleMinutes int    `mapstructure:"first_candle_minutes"`
	SquareOffTime      string `mapstructure:"square_off_time"`
	TimerSeconds       int    `mapstructure:"timer_interval_seconds"`
}

// MonitoringConfig holds daily risk governor limits.
type MonitoringConfig struct {
	MaxDailyTrades int     `mapstructure:"max_daily_trades"`
	MaxDailyLoss   float64 `mapstructure:"max_daily_loss"` // negative floor, e.g. -2000
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	ConsoleOutput bool   `mapstructure:"console_output"`
	LogTrades     bool   `mapstructure:"log_trades"`
	LogFile       string `mapstructure:"log_file"`
}

// SimulationConfig holds the paper/simulation feed settings.
type SimulationConfig struct {
	Enabled        bool               `mapstructure:"enabled"`
	Seed           int64              `mapstructure:"seed"`
	TickIntervalMs int                `mapstructure:"tick_interval_ms"`
	StartPrices    map[string]float64 `mapstructure:"start_prices"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/orb-trader"
	}
	return filepath.Join(home, ".config", "orb-trader")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading.risk_management.stop_loss_points", 30.0)
	v.SetDefault("trading.risk_management.target_points", 0.0)
	v.SetDefault("trading.risk_management.breakout_buffer", 2.0)
	v.SetDefault("trading.risk_management.use_atr_stop_loss", false)
	v.SetDefault("trading.risk_management.atr_periods", 14)
	v.SetDefault("trading.risk_management.atr_multiplier", 0.5)
	v.SetDefault("trading.risk_management.atr_fallback", 30.0)
	v.SetDefault("trading.risk_management.max_holding_period_minutes", 60)
	v.SetDefault("trading.risk_management.max_entry_premium_pct", 5.0)
	v.SetDefault("trading.entry_filters.volume_confirmation", false)
	v.SetDefault("trading.entry_filters.volume_threshold", 1.2)
	v.SetDefault("trading.entry_filters.volume_periods", 10)
	v.SetDefault("trading.entry_filters.momentum_confirmation", false)
	v.SetDefault("trading.entry_filters.momentum_periods", 3)
	v.SetDefault("trading.entry_filters.momentum_tolerance", 0.05)
	v.SetDefault("trading.trailing_stop.enabled", true)
	v.SetDefault("trading.trailing_stop.activation_percentage", 50.0)
	v.SetDefault("trading.trailing_stop.trailing_percentage", 50.0)
	v.SetDefault("timing.market_open_time", "09:15")
	v.SetDefault("timing.first_candle_minutes", 5)
	v.SetDefault("timing.square_off_time", "15:15")
	v.SetDefault("timing.timer_interval_seconds", 2)
	v.SetDefault("monitoring.max_daily_trades", 5)
	v.SetDefault("monitoring.max_daily_loss", -2000.0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console_output", true)
	v.SetDefault("logging.log_trades", true)
	v.SetDefault("simulation.enabled", false)
	v.SetDefault("simulation.tick_interval_ms", 200)
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A template config.yaml is
// written when none exists.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := WriteTemplate(configDir); werr != nil {
				return nil, fmt.Errorf("writing template config: %w", werr)
			}
			return nil, fmt.Errorf("no config found; template written to %s, edit and re-run", configDir)
		}
		return nil, fmt.Errorf("reading config.yaml: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return apperrors.NewValidationError("trading.symbols", nil, "at least one symbol is required")
	}
	for name, sym := range c.Trading.Symbols {
		if !sym.Enabled {
			continue
		}
		if sym.Lots <= 0 {
			return apperrors.NewValidationError("trading.symbols."+name+".lots", sym.Lots, "must be positive")
		}
		if sym.LotSize <= 0 {
			return apperrors.NewValidationError("trading.symbols."+name+".lot_size", sym.LotSize, "must be positive")
		}
	}

	rm := c.Trading.RiskManagement
	if rm.StopLossPoints <= 0 {
		return apperrors.NewValidationError("risk_management.stop_loss_points", rm.StopLossPoints, "must be positive")
	}
	if rm.TargetPoints < 0 {
		return apperrors.NewValidationError("risk_management.target_points", rm.TargetPoints, "must be non-negative")
	}
	if rm.BreakoutBuffer < 0 {
		return apperrors.NewValidationError("risk_management.breakout_buffer", rm.BreakoutBuffer, "must be non-negative")
	}
	if rm.UseATRStopLoss && rm.ATRMultiplier <= 0 {
		return apperrors.NewValidationError("risk_management.atr_multiplier", rm.ATRMultiplier, "must be positive when ATR stop is enabled")
	}
	if rm.UseATRStopLoss && rm.ATRFallback <= 0 {
		return apperrors.NewValidationError("risk_management.atr_fallback", rm.ATRFallback, "must be positive when ATR stop is enabled")
	}
	if rm.MaxHoldingMinutes <= 0 {
		return apperrors.NewValidationError("risk_management.max_holding_period_minutes", rm.MaxHoldingMinutes, "must be positive")
	}

	if c.Monitoring.MaxDailyTrades <= 0 {
		return apperrors.NewValidationError("monitoring.max_daily_trades", c.Monitoring.MaxDailyTrades, "must be positive")
	}
	if c.Monitoring.MaxDailyLoss >= 0 {
		return apperrors.NewValidationError("monitoring.max_daily_loss", c.Monitoring.MaxDailyLoss, "must be a negative floor")
	}

	if _, err := ParseClockTime(c.Timing.MarketOpenTime); err != nil {
		return apperrors.NewValidationError("timing.market_open_time", c.Timing.MarketOpenTime, "must be HH:MM")
	}
	if _, err := ParseClockTime(c.Timing.SquareOffTime); err != nil {
		return apperrors.NewValidationError("timing.square_off_time", c.Timing.SquareOffTime, "must be HH:MM")
	}
	if c.Timing.FirstCandleMinutes <= 0 {
		return apperrors.NewValidationError("timing.first_candle_minutes", c.Timing.FirstCandleMinutes, "must be positive")
	}

	if c.Trading.PartialExits.Enabled {
		steps := c.Trading.PartialExits.Exits
		if len(steps) == 0 {
			return apperrors.NewValidationError("partial_exits.exits", nil, "enabled ladder must have at least one step")
		}
		if !sort.SliceIsSorted(steps, func(i, j int) bool {
			return steps[i].TimeMinutes < steps[j].TimeMinutes
		}) {
			return apperrors.NewValidationError("partial_exits.exits", nil, "steps must be in ascending time order")
		}
		for i, s := range steps {
			if s.ExitPercentage <= 0 || s.ExitPercentage > 100 {
				return apperrors.NewValidationError(fmt.Sprintf("partial_exits.exits[%d].exit_percentage", i), s.ExitPercentage, "must be in (0, 100]")
			}
		}
	}

	ts := c.Trading.TrailingStop
	if ts.Enabled {
		if ts.ActivationPercentage <= 0 || ts.ActivationPercentage > 100 {
			return apperrors.NewValidationError("trailing_stop.activation_percentage", ts.ActivationPercentage, "must be in (0, 100]")
		}
		if ts.TrailingPercentage <= 0 || ts.TrailingPercentage > 100 {
			return apperrors.NewValidationError("trailing_stop.trailing_percentage", ts.TrailingPercentage, "must be in (0, 100]")
		}
	}

	return nil
}

// ParseClockTime parses an "HH:MM" wall-clock string.
func ParseClockTime(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

// SessionTimes resolves the configured open and square-off wall-clock times
// onto the given trading day in the given location.
func (c *Config) SessionTimes(day time.Time, loc *time.Location) (open, squareOff time.Time, err error) {
	ot, err := ParseClockTime(c.Timing.MarketOpenTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	st, err := ParseClockTime(c.Timing.SquareOffTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	open = time.Date(day.Year(), day.Month(), day.Day(), ot.Hour(), ot.Minute(), 0, 0, loc)
	squareOff = time.Date(day.Year(), day.Month(), day.Day(), st.Hour(), st.Minute(), 0, 0, loc)
	return open, squareOff, nil
}

// CaptureWindow returns the opening-range capture duration.
func (c *Config) CaptureWindow() time.Duration {
	return time.Duration(c.Timing.FirstCandleMinutes) * time.Minute
}
