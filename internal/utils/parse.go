package utils

import (
	"fmt"
	"strconv"

	shellwords "github.com/kballard/go-shellquote"
)

// SplitCommandLine splits a REPL input line into a command name, the
// id argument (0 if the command takes none), and the raw data
// argument, honoring shell-style quoting so a data argument can
// contain spaces.
func SplitCommandLine(line string) (cmd string, id int64, data []byte, err error) {
	fields, err := shellwords.Split(line)
	if err != nil {
		return "", 0, nil, fmt.Errorf("parse command: %w", err)
	}
	if len(fields) == 0 {
		return "", 0, nil, fmt.Errorf("empty command")
	}

	cmd = fields[0]
	rest := fields[1:]

	switch cmd {
	case "insert", "update":
		if len(rest) != 2 {
			return "", 0, nil, fmt.Errorf("%s requires an id and a data argument", cmd)
		}
	case "get", "exists", "remove":
		if len(rest) != 1 {
			return "", 0, nil, fmt.Errorf("%s requires an id argument", cmd)
		}
	case "ping", "help":
		if len(rest) != 0 {
			return "", 0, nil, fmt.Errorf("%s takes no arguments", cmd)
		}
	}

	if len(rest) > 0 {
		id, err = strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return "", 0, nil, fmt.Errorf("invalid id %q: %w", rest[0], err)
		}
	}
	if len(rest) > 1 {
		data = []byte(rest[1])
	}

	return cmd, id, data, nil
}
