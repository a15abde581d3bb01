package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

// TestPersistentFlags tests that every flag NewCommandContext reads is
// registered on the root command.
func TestPersistentFlags(t *testing.T) {
	flags := []string{"dir", "format", "no-color", "non-interactive", "log-level", "log-format"}
	for _, name := range flags {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered on root command", name)
		}
	}
}

// TestSubcommandsRegistered tests that all planctl subcommands are wired
// into the root command.
func TestSubcommandsRegistered(t *testing.T) {
	subcommands := map[string]bool{
		"init":       false,
		"save":       false,
		"load":       false,
		"context":    false,
		"clear":      false,
		"status":     false,
		"list":       false,
		"resume":     false,
		"run":        false,
		"refine":     false,
		"impact":     false,
		"phases":     false,
		"version":    false,
		"completion": false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, exists := subcommands[cmd.Name()]; exists {
			subcommands[cmd.Name()] = true
		}
	}

	for name, found := range subcommands {
		if !found {
			t.Errorf("subcommand %q not found on root command", name)
		}
	}
}

// TestCommandFlags tests that each subcommand carries its own flags.
func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{initCmd, []string{"project", "type"}},
		{saveCmd, []string{"summary", "decision"}},
		{refineCmd, []string{"feedback", "cascade", "summary", "decision"}},
		{clearCmd, []string{"force"}},
		{listCmd, []string{"root"}},
		{resumeCmd, []string{"phase"}},
		{runCmd, []string{"max-parallel"}},
		{phasesCmd, []string{"interactive"}},
		{versionCmd, []string{"verbose", "json"}},
	}

	for _, tt := range tests {
		for _, name := range tt.flags {
			if tt.cmd.Flags().Lookup(name) == nil {
				t.Errorf("flag %q not found on %s command", name, tt.cmd.Name())
			}
		}
	}
}

// TestStructuredOutput tests the format values that select machine-readable
// output.
func TestStructuredOutput(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"json", true},
		{"yaml", true},
		{"text", false},
		{"", false},
	}

	for _, tt := range tests {
		cmdCtx := &CommandContext{Format: tt.format}
		if got := cmdCtx.StructuredOutput(); got != tt.want {
			t.Errorf("StructuredOutput() with format %q = %v, want %v", tt.format, got, tt.want)
		}
	}
}
