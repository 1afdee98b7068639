package interactive

import (
	"regexp"
	"strings"
)

type commandRule struct {
	match  func(command string) bool
	reason string
}

func pattern(expr string) func(string) bool {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

var gitCommitRe = regexp.MustCompile(`git commit`)

// gitCommitWithoutMessage matches "git commit" unless it is directly
// followed by -m or --message.
func gitCommitWithoutMessage(command string) bool {
	for _, loc := range gitCommitRe.FindAllStringIndex(command, -1) {
		rest := command[loc[1]:]
		trimmed := strings.TrimLeft(rest, " \t")
		if len(trimmed) < len(rest) &&
			(strings.HasPrefix(trimmed, "-m") || strings.HasPrefix(trimmed, "--message")) {
			continue
		}
		return true
	}
	return false
}

var commandRules = []commandRule{
	{match: pattern(`vim|nano|emacs|code`), reason: "Opens text editor - requires user interaction"},
	{match: gitCommitWithoutMessage, reason: "Opens editor for commit message"},
	{match: pattern(`sudo`), reason: "May prompt for password"},
	{match: pattern(`docker login`), reason: "Prompts for username and password"},
	{match: pattern(`ssh`), reason: "May prompt for passwords or host verification"},
	{match: pattern(`npm login`), reason: "Prompts for authentication"},
}

// CheckCommand reports why a planned command is likely to need user input.
// It is advisory only and never affects a recording's stored classification.
func CheckCommand(command string) (string, bool) {
	for _, rule := range commandRules {
		if rule.match(command) {
			return rule.reason, true
		}
	}
	return "", false
}

var alternatives = []struct {
	prefix      string
	alternative string
}{
	{"git commit", `git commit -m "your message"`},
	{"npm login", "npm login --auth-type=web"},
	{"docker login", "echo $DOCKER_TOKEN | docker login --username $DOCKER_USER --password-stdin"},
	{"sudo apt install", "sudo apt install -y package-name"},
	{"sudo yum install", "sudo yum install -y package-name"},
}

// SuggestAlternative returns a non-interactive form of a known interactive
// command, if one exists.
func SuggestAlternative(command string) (string, bool) {
	for _, a := range alternatives {
		if strings.Contains(command, a.prefix) {
			return a.alternative, true
		}
	}
	return "", false
}
