package config

import (
	"fmt"
	"sort"
)

// ProfileNames returns profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Profile(name string) (Profile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}

func (c *Config) AddProfile(name string, profile Profile) error {
	if name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if _, exists := c.Profiles[name]; exists {
		return fmt.Errorf("profile '%s' already exists", name)
	}
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
	return nil
}

func (c *Config) UpdateProfile(name string, profile Profile) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.Profiles[name] = profile
	if name == c.ActiveProfile {
		c.currentProfile = &profile
	}
	return nil
}

// SwitchProfile makes name the active profile.
func (c *Config) SwitchProfile(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}

// DeleteProfile removes name. Deleting the active profile activates the
// first remaining one, or recreates the default profile when none remain.
func (c *Config) DeleteProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	delete(c.Profiles, name)

	if len(c.Profiles) == 0 {
		c.Profiles[DefaultProfileName] = DefaultProfile()
	}
	if c.ActiveProfile == name {
		return c.SwitchProfile(c.ProfileNames()[0])
	}
	return nil
}
