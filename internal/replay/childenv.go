package replay

import (
	"runtime"
	"strings"

	"github.com/deepguide-ai/dg/internal/envfilter"
)

// Standard terminal dimensions every replay runs with.
const (
	StandardColumns = 120
	StandardRows    = 30
)

// overlay is forced into every replayed command's environment, replacing
// whatever the invoking shell had.
var overlay = [][2]string{
	{"COLUMNS", "120"},
	{"LINES", "30"},
	{"TERM", "xterm-256color"},
	{"CI", "1"},
	{"NONINTERACTIVE", "1"},
}

// BuildChildEnv returns a copy of base with deny-listed variables removed and
// the replay overlay applied. The names of removed variables are returned for
// logging. The result is suitable for exec.Cmd.Env.
func BuildChildEnv(base []string, deny []string) (env []string, denied []string) {
	kept, denied := envfilter.Filter(base, deny)
	env = make([]string, 0, len(kept)+len(overlay))
	found := make([]bool, len(overlay))

	for _, kv := range kept {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			env = append(env, kv)
			continue
		}
		idx := overlayIndex(key)
		if idx < 0 {
			env = append(env, kv)
			continue
		}
		if !found[idx] {
			env = append(env, overlay[idx][0]+"="+overlay[idx][1])
			found[idx] = true
		}
	}

	for i, kv := range overlay {
		if !found[i] {
			env = append(env, kv[0]+"="+kv[1])
		}
	}
	return env, denied
}

func overlayIndex(key string) int {
	if runtime.GOOS == "windows" {
		key = strings.ToUpper(key)
	}
	for i, kv := range overlay {
		if kv[0] == key {
			return i
		}
	}
	return -1
}
