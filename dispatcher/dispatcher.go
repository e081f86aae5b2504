// dispatcher.go: transport-agnostic command dispatch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package dispatcher

import (
	"fmt"
	"strconv"
	"sync"

	aytdb "github.com/OyuNet/aytdb"
)

// Dispatcher parses a line of text into a command and drives the
// underlying Store, oblivious to whatever transport handed it the line
// (console stdin, or one of many TCP connections) — grounded on
// original_source/server.c's process_command, which is reused verbatim by
// both main.c's REPL and the TCP accept loop in the original.
type Dispatcher struct {
	store *aytdb.Store

	mu       sync.RWMutex
	password string

	// RequireAuth gates every command except auth/ping/help behind a
	// prior successful auth on the session, per §6.3. A front end with no
	// authentication boundary (such as a console) can set this false or
	// hand every session a pre-authenticated Session instead.
	RequireAuth bool

	// OnShutdown is invoked when a "shutdown" command is dispatched.
	// Left nil, shutdown still replies OK and sets Result.Shutdown, but
	// has nothing to call.
	OnShutdown func()
}

// New returns a Dispatcher fronting store, with the default password
// ("password", per §6.3's "TCP server defaults").
func New(store *aytdb.Store) *Dispatcher {
	return &Dispatcher{
		store:       store,
		password:    "password",
		RequireAuth: true,
	}
}

// SetPassword changes the password checked by "auth" and set by
// "config password", without affecting already-authenticated sessions.
func (d *Dispatcher) SetPassword(pw string) {
	d.mu.Lock()
	d.password = pw
	d.mu.Unlock()
}

func (d *Dispatcher) checkPassword(candidate string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return candidate == d.password
}

// Result is the outcome of dispatching one line.
type Result struct {
	Reply    string
	Close    bool
	Shutdown bool
}

// Dispatch parses line, enforces authentication for sess, and executes the
// matched command against the Store.
func (d *Dispatcher) Dispatch(sess *Session, line string) Result {
	tokens := parseLine(line)
	if len(tokens) == 0 {
		return Result{Reply: "ERROR: Command not found"}
	}

	cmd := tokens[0]
	args := tokens[1:]

	if d.RequireAuth && !authExempt[cmd] && !sess.Authenticated() {
		return Result{Reply: "ERROR: Authentication required."}
	}

	switch cmd {
	case "auth":
		return d.cmdAuth(sess, args)
	case "ping":
		return Result{Reply: "PONG"}
	case "help":
		return Result{Reply: helpText}
	case "set":
		return d.cmdSet(args)
	case "setex":
		return d.cmdSetex(args)
	case "get":
		return d.cmdGet(args)
	case "del":
		return d.cmdDel(args)
	case "save":
		return d.cmdSave()
	case "interval":
		return d.cmdInterval(args)
	case "compact":
		return d.cmdCompact()
	case "config":
		return d.cmdConfig(args)
	case "exit", "quit":
		return Result{Reply: "OK: Closing connection", Close: true}
	case "shutdown":
		if d.OnShutdown != nil {
			d.OnShutdown()
		}
		return Result{Reply: "OK: Server shutting down", Shutdown: true}
	default:
		return Result{Reply: "ERROR: Command not found"}
	}
}

func (d *Dispatcher) cmdAuth(sess *Session, args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "ERROR: auth command requires password"}
	}
	if !d.checkPassword(args[0]) {
		return Result{Reply: "ERROR: Invalid password"}
	}
	sess.authenticate()
	return Result{Reply: "OK: Authentication successful"}
}

func (d *Dispatcher) cmdSet(args []string) Result {
	if len(args) < 2 {
		return Result{Reply: "ERROR: set command requires key and value"}
	}
	if err := d.store.Set([]byte(args[0]), []byte(args[1])); err != nil {
		return Result{Reply: errorReply(args[0], err)}
	}
	return Result{Reply: "OK"}
}

func (d *Dispatcher) cmdSetex(args []string) Result {
	if len(args) < 3 {
		return Result{Reply: "ERROR: setex command requires key, value, and ttl"}
	}
	ttl, err := strconv.Atoi(args[2])
	if err != nil {
		return Result{Reply: "ERROR: invalid ttl value"}
	}
	if err := d.store.SetWithTTL([]byte(args[0]), []byte(args[1]), ttl); err != nil {
		return Result{Reply: errorReply(args[0], err)}
	}
	return Result{Reply: "OK"}
}

func (d *Dispatcher) cmdGet(args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "ERROR: get command requires key"}
	}
	value, found, err := d.store.Get([]byte(args[0]))
	if err != nil {
		return Result{Reply: errorReply(args[0], err)}
	}
	if !found {
		return Result{Reply: "NULL"}
	}
	return Result{Reply: string(value)}
}

func (d *Dispatcher) cmdDel(args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "ERROR: del command requires key"}
	}
	if _, err := d.store.Del([]byte(args[0])); err != nil {
		return Result{Reply: errorReply(args[0], err)}
	}
	return Result{Reply: "OK"}
}

func (d *Dispatcher) cmdSave() Result {
	if err := d.store.Save(); err != nil {
		return Result{Reply: "ERROR: Failed to save snapshot"}
	}
	return Result{Reply: "OK: Snapshot saved successfully"}
}

func (d *Dispatcher) cmdInterval(args []string) Result {
	if len(args) < 1 {
		return Result{Reply: "ERROR: interval command requires seconds value"}
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil || seconds <= 0 {
		return Result{Reply: "ERROR: Invalid interval value"}
	}
	d.store.Reschedule(seconds)
	return Result{Reply: fmt.Sprintf("OK: Snapshot interval set to %d seconds", seconds)}
}

func (d *Dispatcher) cmdCompact() Result {
	if err := d.store.Compact(); err != nil {
		return Result{Reply: "ERROR: Compaction failed"}
	}
	return Result{Reply: "OK: Compaction process complete"}
}

func (d *Dispatcher) cmdConfig(args []string) Result {
	if len(args) < 2 || args[0] != "password" {
		return Result{Reply: "ERROR: config command requires a valid subcommand"}
	}
	d.SetPassword(args[1])
	return Result{Reply: "OK: Password updated"}
}

func errorReply(key string, err error) string {
	return fmt.Sprintf("ERROR: %s (key=%s)", err.Error(), key)
}
