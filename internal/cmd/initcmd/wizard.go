package initcmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh"
)

// Wizard manages the interactive configuration wizard.
type Wizard struct {
	state      *WizardState
	outputPath string
}

// NewWizard creates a new wizard instance.
func NewWizard() *Wizard {
	return &Wizard{
		state: NewWizardState(),
	}
}

// SetOutputPath sets the output path (from command line flag).
func (w *Wizard) SetOutputPath(path string) {
	w.outputPath = path
	if path != "" {
		w.state.ConfigPath = path
	}
}

// Run executes the wizard flow.
func (w *Wizard) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println()
		fmt.Println(RenderWarning("Setup canceled by user"))
		os.Exit(0)
	}()

	fmt.Println()
	fmt.Println(RenderHeader())
	fmt.Println()

	// Step 1: Welcome and file configuration
	if err := NewWelcomeForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 2: Check for existing file
	if err := w.handleExistingFile(); err != nil {
		return err
	}

	// Step 3: Inventory
	fmt.Println(RenderSection(1, 3, "Inventory"))
	if err := NewInventoryForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 4: Alerts
	fmt.Println(RenderSection(2, 3, "Expiry Alerts"))
	if err := NewAlertForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 5: Logging
	fmt.Println(RenderSection(3, 3, "Logging"))
	if err := NewAgentForm(w.state).Run(); err != nil {
		return w.handleError(err)
	}

	// Step 6: Generate and validate config
	cfg, err := w.state.ToConfig()
	if err != nil {
		return w.handleError(fmt.Errorf("failed to create configuration: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return w.handleValidationError(err)
	}

	// Step 7: Write config file
	fmt.Println()
	if err := WriteConfig(cfg, w.state.ConfigPath); err != nil {
		return w.handleError(err)
	}

	w.showSuccess()

	return nil
}

func (w *Wizard) handleExistingFile() error {
	if !FileExists(w.state.ConfigPath) {
		return nil
	}

	if err := NewOverwriteConfirmForm(w.state, w.state.ConfigPath).Run(); err != nil {
		return w.handleError(err)
	}

	if !w.state.OverwriteFile {
		fmt.Println(RenderWarning("Setup canceled: file already exists"))
		os.Exit(0)
	}

	return nil
}

func (w *Wizard) handleError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println()
		fmt.Println(RenderWarning("Setup canceled"))
		os.Exit(0)
	}
	fmt.Println()
	fmt.Println(RenderError(err.Error()))
	return err
}

func (w *Wizard) handleValidationError(err error) error {
	fmt.Println()
	fmt.Println(RenderError("Configuration validation failed:"))
	fmt.Println(RenderError("  " + err.Error()))
	fmt.Println()
	fmt.Println(RenderInfo("Please run 'cw-inventory init' again with corrected values."))
	return err
}

func (w *Wizard) showSuccess() {
	fmt.Println()
	fmt.Println(RenderSuccess("Config written to " + w.state.ConfigPath))
	fmt.Println(RenderSuccess("Validated successfully"))
	fmt.Println()

	paths := parsePaths(w.state.ScanPaths)
	webhook := ""
	if w.state.WebhookURL != "" {
		webhook = "set"
	}

	fmt.Println(TitleStyle.Render("Configuration Summary:"))
	fmt.Println(RenderSetting("Database", w.state.DBPath))
	fmt.Println(RenderSetting("Scan paths", fmt.Sprintf("%d", len(paths))))
	fmt.Println(RenderSetting("Threshold", w.state.ThresholdDays+" days"))
	fmt.Println(RenderSetting("Webhook", webhook))
	fmt.Println(RenderSetting("Metrics", w.state.TextfilePath))
	fmt.Println()

	fmt.Println(TitleStyle.Render("Next steps:"))
	fmt.Println()
	fmt.Println("  To build the inventory:")
	fmt.Println("    " + RenderCode("cw-inventory scan -c "+w.state.ConfigPath))
	fmt.Println()
	fmt.Println("  To report expiring certificates:")
	fmt.Println("    " + RenderCode("cw-inventory alert -c "+w.state.ConfigPath))
	fmt.Println()
}

// RunNonInteractive writes a configuration built from CW_* environment variables.
func RunNonInteractive(outputPath string) error {
	state := NewWizardState()
	state.ConfigPath = outputPath

	if v := os.Getenv("CW_INVENTORY_DB_PATH"); v != "" {
		state.DBPath = v
	}
	if v := os.Getenv("CW_SCAN_PATHS"); v != "" {
		state.ScanPaths = v
	}
	if v := os.Getenv("CW_ALERT_THRESHOLD_DAYS"); v != "" {
		if err := ValidateThreshold(v); err != nil {
			return fmt.Errorf("CW_ALERT_THRESHOLD_DAYS: %w", err)
		}
		state.ThresholdDays = v
	}
	if v := os.Getenv("CW_NOTIFY_WEBHOOK_URL"); v != "" {
		state.WebhookURL = v
	}
	if v := os.Getenv("CW_AGENT_LOG_LEVEL"); v != "" {
		state.LogLevel = v
	}
	if v := os.Getenv("CW_METRICS_TEXTFILE_PATH"); v != "" {
		state.TextfilePath = v
	}

	cfg, err := state.ToConfig()
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := WriteConfig(cfg, state.ConfigPath); err != nil {
		return err
	}

	fmt.Println(RenderSuccess("Config written to " + state.ConfigPath))
	return nil
}
