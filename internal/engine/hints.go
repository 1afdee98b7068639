package engine

// Install hints per tool and GOOS.
var installHints = map[string]map[string]string{
	ToolAsciinema: {
		"darwin":  "brew install asciinema",
		"linux":   "apt-get install asciinema (or see https://docs.asciinema.org/manual/cli/installation/)",
		"windows": "recording is not supported on Windows; use WSL",
		"":        "see https://docs.asciinema.org/manual/cli/installation/",
	},
	ToolTermsvg: {
		"darwin":  "brew install termsvg",
		"linux":   "curl -sL https://raw.githubusercontent.com/MrMarble/termsvg/master/scripts/install-termsvg.sh | sudo -E bash -",
		"windows": "download from https://github.com/MrMarble/termsvg/releases (export only)",
		"":        "go install github.com/mrmarble/termsvg/cmd/termsvg@latest",
	},
}

// InstallHint returns the install instruction for tool on goos.
func InstallHint(tool, goos string) string {
	hints, ok := installHints[tool]
	if !ok {
		return ""
	}
	if hint, ok := hints[goos]; ok {
		return hint
	}
	return hints[""]
}
