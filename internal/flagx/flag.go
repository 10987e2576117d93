// Package flagx holds small helpers for components that each parse their own
// subset of the command line.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowedFlags (and their values) from args.
//
// Both "-f value" and "-f=value" forms are recognized. A token starting with
// "-" is never consumed as a value. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, keep := allowed[name]; keep {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, keep := allowed[arg]; !keep {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// lookupString parses a single string flag known under the given names from
// os.Args, ignoring every other flag. The last occurrence wins.
func lookupString(usage string, names ...string) string {
	var v string

	dashed := make([]string, 0, len(names))
	for _, n := range names {
		dashed = append(dashed, "-"+n)
	}
	args := FilterArgs(os.Args[1:], dashed)

	fs := flag.NewFlagSet(names[0], flag.ContinueOnError)
	for _, n := range names {
		fs.StringVar(&v, n, "", usage)
	}
	_ = fs.Parse(args)

	return v
}

// JsonConfigFlags returns the value of -c / -config, or "" when absent.
func JsonConfigFlags() string {
	return lookupString("Path to config file", "config", "c")
}

// EnvFileFlags returns the value of -env / -dotenv, the optional dotenv file.
func EnvFileFlags() string {
	return lookupString("Path to .env file", "env", "dotenv")
}
