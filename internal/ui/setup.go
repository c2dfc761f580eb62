package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mcao2/skipera/internal/config"
)

// RunSetup prompts for the CAUTH session cookie on first run and persists it
// to the config file.
func RunSetup(cfg *config.Config) error {
	var cauth string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Coursera session cookie (CAUTH)").
				Description("Copy the CAUTH cookie value from your browser's devtools while logged in to coursera.org.").
				EchoMode(huh.EchoModePassword).
				Value(&cauth).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("cookie value is required")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.CAUTH = strings.TrimSpace(cauth)
	return cfg.Save()
}
