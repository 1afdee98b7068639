package interactive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepguide-ai/dg/internal/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputs(payloads ...string) []cast.Event {
	events := make([]cast.Event, len(payloads))
	for i, p := range payloads {
		events[i] = cast.Event{Time: float64(i), Channel: cast.ChannelOutput, Data: p}
	}
	return events
}

func TestDetect_Signals(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "password prompt", payload: "Password: "},
		{name: "passphrase", payload: "Enter passphrase for key '/root/.ssh/id_rsa':"},
		{name: "yes no", payload: "Proceed (Y/N)?"},
		{name: "press any key", payload: "PRESS ANY KEY to continue"},
		{name: "editor", payload: "opening vim..."},
		{name: "sudo marker", payload: "[sudo] password for user:"},
		{name: "menu", payload: "Please select an option:"},
		{name: "enter your", payload: "Enter your name"},
		{name: "awaiting input", payload: "awaiting input"},
		{name: "choose from", payload: "Choose from the list"},
		{name: "continue", payload: "Do you want to continue?"},
		{name: "are you sure", payload: "Are you sure?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(cast.FromSlice(outputs("$ ", "run\r\n", tt.payload)))
			assert.True(t, r.Interactive)
			assert.NotEmpty(t, r.Signal)
			assert.Equal(t, tt.payload, r.Payload)
		})
	}
}

func TestDetect_NoSignals(t *testing.T) {
	r := Detect(cast.FromSlice(outputs("$ ", "ls\r\n", "README.md  main.go\r\n", "$ ")))
	assert.False(t, r.Interactive)
	assert.Empty(t, r.Signal)
}

func TestDetect_IgnoresInputEvents(t *testing.T) {
	events := []cast.Event{
		{Channel: cast.ChannelInput, Data: "password:"},
		{Channel: cast.ChannelOutput, Data: "done\r\n"},
	}
	assert.False(t, Detect(cast.FromSlice(events)).Interactive)
}

func TestDetect_Monotonic(t *testing.T) {
	base := outputs("Password: ")
	require.True(t, Detect(cast.FromSlice(base)).Interactive)

	extended := append(base, outputs("plain text", "more output\r\n", "Are you sure?")...)
	r := Detect(cast.FromSlice(extended))
	assert.True(t, r.Interactive)
	assert.Equal(t, "Password: ", r.Payload, "first match latches the result")
}

func TestDetect_ShortCircuits(t *testing.T) {
	seen := 0
	seq := func(yield func(cast.Event) bool) {
		for _, ev := range outputs("Password:", "a", "b", "c") {
			seen++
			if !yield(ev) {
				return
			}
		}
	}
	assert.True(t, Detect(seq).Interactive)
	assert.Equal(t, 1, seen)
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.cast")
	content := "{\"version\": 2}\n[0.1, \"o\", \"$ \"]\n[0.2, \"o\", \"[sudo] password for dev: \"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	r, err := DetectFile(path)
	require.NoError(t, err)
	assert.True(t, r.Interactive)

	_, err = DetectFile(filepath.Join(dir, "missing.cast"))
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		command     string
		interactive bool
		reason      string
	}{
		{command: "vim README.md", interactive: true, reason: "Opens text editor - requires user interaction"},
		{command: "git commit", interactive: true, reason: "Opens editor for commit message"},
		{command: "git commit --amend", interactive: true, reason: "Opens editor for commit message"},
		{command: `git commit -m "fix"`, interactive: false},
		{command: `git commit --message "fix"`, interactive: false},
		{command: "sudo make install", interactive: true, reason: "May prompt for password"},
		{command: "docker login registry.local", interactive: true, reason: "Prompts for username and password"},
		{command: "ssh host uptime", interactive: true, reason: "May prompt for passwords or host verification"},
		{command: "npm login", interactive: true, reason: "Prompts for authentication"},
		{command: "ls -la", interactive: false},
		{command: "go test ./...", interactive: false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			reason, ok := CheckCommand(tt.command)
			assert.Equal(t, tt.interactive, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSuggestAlternative(t *testing.T) {
	alt, ok := SuggestAlternative("git commit")
	require.True(t, ok)
	assert.Equal(t, `git commit -m "your message"`, alt)

	alt, ok = SuggestAlternative("sudo apt install jq")
	require.True(t, ok)
	assert.Equal(t, "sudo apt install -y package-name", alt)

	_, ok = SuggestAlternative("make test")
	assert.False(t, ok)
}
