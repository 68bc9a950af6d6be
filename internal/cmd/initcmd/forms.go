package initcmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// NewWelcomeForm creates the welcome and file configuration form.
func NewWelcomeForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cw-inventory setup!").
				Description("This wizard creates a configuration file for the certificate inventory.\n\n"+
					"You'll need:\n"+
					"  • The directories that hold your certificates (.pem, .crt, .cer)\n"+
					"  • Optionally, a Slack-compatible incoming webhook URL for expiry alerts"),

			huh.NewInput().
				Title("Config file path").
				Description("Where to save the configuration file").
				Placeholder(DefaultConfigPath).
				Value(&state.ConfigPath).
				Validate(ValidateConfigPath),
		),
	).WithTheme(CreateTheme())
}

// NewInventoryForm creates the storage and discovery form.
func NewInventoryForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Inventory").
				Description("Where certificates are found and where the inventory is kept"),

			huh.NewInput().
				Title("Database path").
				Description("SQLite file holding the inventory (created if missing)").
				Placeholder("cw-inventory.db").
				Value(&state.DBPath).
				Validate(ValidateDBPath),

			huh.NewInput().
				Title("Scan paths (comma-separated)").
				Description("Files or directories scanned when 'scan' is run without arguments").
				Placeholder("/etc/ssl/certs, /etc/nginx/tls").
				Value(&state.ScanPaths).
				Validate(ValidateScanPaths),
		),
	).WithTheme(CreateTheme())
}

// NewAlertForm creates the alerting form.
func NewAlertForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Expiry Alerts").
				Description("When and where to report certificates nearing expiry"),

			huh.NewSelect[string]().
				Title("Alert threshold").
				Description("Certificates expiring within this many days are reported").
				Options(
					huh.NewOption("7 days", "7"),
					huh.NewOption("14 days", "14"),
					huh.NewOption("30 days (recommended)", "30"),
					huh.NewOption("60 days", "60"),
					huh.NewOption("90 days", "90"),
				).
				Value(&state.ThresholdDays),

			huh.NewInput().
				Title("Webhook URL").
				Description("Slack-compatible incoming webhook (leave empty to configure later)").
				Placeholder("https://hooks.slack.com/services/...").
				Value(&state.WebhookURL).
				EchoMode(huh.EchoModePassword).
				Validate(ValidateWebhookURL),
		),
	).WithTheme(CreateTheme())
}

// NewAgentForm creates the logging form.
func NewAgentForm(state *WizardState) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log Level").
				Description("Logging verbosity").
				Options(
					huh.NewOption("Debug (verbose)", "debug"),
					huh.NewOption("Info (recommended)", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error (quiet)", "error"),
				).
				Value(&state.LogLevel),
		),
	).WithTheme(CreateTheme())
}

// NewOverwriteConfirmForm creates a form to confirm file overwrite.
func NewOverwriteConfirmForm(state *WizardState, path string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("File '%s' already exists. Overwrite?", path)).
				Description("The existing file will be replaced with the new configuration.").
				Value(&state.OverwriteFile).
				Affirmative("Yes, overwrite").
				Negative("No, cancel"),
		),
	).WithTheme(CreateTheme())
}

// NewPurgeConfirmForm asks before deleting inventory rows.
func NewPurgeConfirmForm(scope string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s from the inventory?", scope)).
				Description("first_seen history for these rows is lost.").
				Value(confirmed).
				Affirmative("Yes, delete").
				Negative("No, cancel"),
		),
	).WithTheme(CreateTheme())
}
