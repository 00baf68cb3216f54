package cmd

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/Vibella/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage backend profiles for different Vibella servers.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile, _ := cfg.Profile(name)
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			printProfile(profile, "    ")
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		profileName := args[0]
		profile, exists := cfg.Profile(profileName)
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		printProfile(profile, "")
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Profile name",
			}
			var err error
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profile(profileName); exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile := promptProfile(config.DefaultProfile())

		if err := cfg.AddProfile(profileName, profile); err != nil {
			log.Fatal(err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		profileName := profileArgOrSelect(cfg, args, "Select profile to edit")

		profile, exists := cfg.Profile(profileName)
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		if err := cfg.UpdateProfile(profileName, promptProfile(profile)); err != nil {
			log.Fatal(err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		profileName := profileArgOrSelect(cfg, args, "Select profile to delete")

		if _, exists := cfg.Profile(profileName); !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'? (y/N)", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		if err := cfg.DeleteProfile(profileName); err != nil {
			log.Fatal(err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully! Active profile: %s\n", profileName, cfg.ActiveProfile)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			profileNames := make([]string, 0, len(cfg.Profiles))
			for _, name := range cfg.ProfileNames() {
				if name != cfg.ActiveProfile {
					profileNames = append(profileNames, name)
				}
			}

			if len(profileNames) == 0 {
				fmt.Println("No other profiles available to switch to")
				return
			}

			prompt := promptui.Select{
				Label: "Select profile to switch to",
				Items: profileNames,
			}
			var err error
			_, profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Selection failed: %v", err)
			}
		}

		if err := cfg.SwitchProfile(profileName); err != nil {
			log.Fatal(err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig(overrides)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func profileArgOrSelect(cfg *config.Config, args []string, label string) string {
	if len(args) > 0 {
		return args[0]
	}

	profileNames := cfg.ProfileNames()
	if len(profileNames) == 0 {
		log.Fatalf("No profiles available")
	}

	prompt := promptui.Select{
		Label: label,
		Items: profileNames,
	}
	_, profileName, err := prompt.Run()
	if err != nil {
		log.Fatalf("Selection failed: %v", err)
	}
	return profileName
}

// promptProfile asks for each profile field, offering current values as
// defaults.
func promptProfile(current config.Profile) config.Profile {
	baseURLPrompt := promptui.Prompt{
		Label:    "Base URL",
		Default:  current.BaseURL,
		Validate: validateBaseURL,
	}
	baseURL, err := baseURLPrompt.Run()
	if err != nil {
		log.Fatalf("Prompt failed: %v", err)
	}

	timeoutDefault := ""
	if current.RequestTimeout > 0 {
		timeoutDefault = time.Duration(current.RequestTimeout).String()
	}
	timeoutPrompt := promptui.Prompt{
		Label:    "Request timeout (e.g. 60s, empty for none)",
		Default:  timeoutDefault,
		Validate: validateTimeout,
	}
	timeout, err := timeoutPrompt.Run()
	if err != nil {
		log.Fatalf("Prompt failed: %v", err)
	}

	profile := config.Profile{BaseURL: baseURL}
	if timeout != "" {
		d, _ := time.ParseDuration(timeout)
		profile.RequestTimeout = config.Duration(d)
	}
	return profile
}

func validateBaseURL(input string) error {
	u, err := url.Parse(input)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	return nil
}

func validateTimeout(input string) error {
	if input == "" {
		return nil
	}
	d, err := time.ParseDuration(input)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func printProfile(profile config.Profile, indent string) {
	fmt.Printf("%sBase URL: %s\n", indent, profile.BaseURL)
	timeout := "none"
	if profile.RequestTimeout > 0 {
		timeout = time.Duration(profile.RequestTimeout).String()
	}
	fmt.Printf("%sRequest Timeout: %s\n", indent, timeout)
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
