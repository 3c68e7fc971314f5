// Package agent orchestrates a complete mdflow invocation.
//
// The flow is linear: parse the CLI, locate the agent file (local search
// order or remote fetch with trust-on-first-use), split front matter from
// the body, resolve the driver name, merge the config cascade, apply the
// interactive transform when requested, assemble the variable binding set,
// expand import directives, render the Liquid template, compile the driver
// argument vector, and finally spawn the driver with inherited stdio,
// relaying its exit code.
//
// # Driver Resolution
//
// The driver comes from the --_command flag when given, otherwise from the
// filename convention: the segment before the trailing .md names the
// driver, and an "i" segment anywhere before it marks the file interactive
// (fix.i.claude.md runs claude interactively).
//
// # Variable Bindings
//
// Bindings are assembled lowest precedence first: front-matter defaults
// (keys starting with "_", plus $name declarations), CLI --_name flags,
// positional arguments as _1.._N and _args, and piped stdin as _stdin.
// Underscore-prefixed variables still free after binding are prompted for
// on a terminal and fatal otherwise; other free names are presumed to be
// CLI-flag references.
//
// # Signals
//
// SIGINT and SIGTERM are forwarded to the tracked child process through a
// single-slot cell and cancel in-flight resolution; the process exits 130
// or 143 respectively.
package agent
