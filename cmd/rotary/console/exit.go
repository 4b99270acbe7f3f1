package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Exit formats msg and wraps it with the process exit code.
func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}

// Fail reports err after a short description of what was being done.
func Fail(code int, what string, err error) cli.ExitCoder {
	return Exit(code, "%s: %s", what, Red(err))
}
