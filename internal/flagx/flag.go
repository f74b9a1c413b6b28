// Package flagx lets several components share one command line. Each
// component picks out the flags it owns, and the command dispatcher receives
// whatever is left.
package flagx

import (
	"flag"
	"strings"
)

// partition walks args once and splits them into the flags listed in owned
// (with their values) and everything else, preserving order in both halves.
//
// Recognised forms: "-c value" and "-c=value" / "--config=value". A token
// that starts with "-" is never consumed as a value.
func partition(args []string, owned []string) (picked, rest []string) {
	set := make(map[string]struct{}, len(owned))
	for _, f := range owned {
		set[f] = struct{}{}
	}

	picked = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := set[name]; ok {
				picked = append(picked, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := set[arg]; !ok {
			rest = append(rest, arg)
			continue
		}

		picked = append(picked, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			picked = append(picked, args[i+1])
			i++
		}
	}

	return picked, rest
}

// FilterArgs returns only the allowed flags (and their values) from args.
func FilterArgs(args []string, allowedFlags []string) []string {
	picked, _ := partition(args, allowedFlags)
	return picked
}

// StripArgs is the complement of FilterArgs: it drops the listed flags and
// their values and returns the remaining arguments.
func StripArgs(args []string, flags []string) []string {
	_, rest := partition(args, flags)
	return rest
}

// ConfigFileFlags are the flags that select a JSON config file.
var ConfigFileFlags = []string{"-c", "-config"}

// ConfigFile extracts the config file path given via -c or -config.
// When both are present the last one wins. Returns "" if neither is set.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}
