// dispatcher_test.go: unit tests for command parsing and dispatch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package dispatcher

import (
	"testing"

	aytdb "github.com/OyuNet/aytdb"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "set a b", []string{"set", "a", "b"}},
		{"quoted value", `set a "hello world"`, []string{"set", "a", "hello world"}},
		{"extra whitespace", "  get   k  ", []string{"get", "k"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("parseLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	store, err := aytdb.New(aytdb.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func TestDispatcher_RequiresAuth(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewSession()

	res := d.Dispatch(sess, "set k v")
	if res.Reply != "ERROR: Authentication required." {
		t.Errorf("got %q, want authentication error", res.Reply)
	}

	res = d.Dispatch(sess, "auth password")
	if res.Reply != "OK: Authentication successful" {
		t.Fatalf("auth failed: %q", res.Reply)
	}

	res = d.Dispatch(sess, "set k v")
	if res.Reply != "OK" {
		t.Errorf("got %q, want OK after authenticating", res.Reply)
	}
}

func TestDispatcher_AuthExemptCommands(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewSession()

	if res := d.Dispatch(sess, "ping"); res.Reply != "PONG" {
		t.Errorf("ping: got %q", res.Reply)
	}
	if res := d.Dispatch(sess, "help"); res.Reply == "" {
		t.Error("help: expected non-empty reply")
	}
}

func TestDispatcher_SetGetDel(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewAuthenticatedSession()

	if res := d.Dispatch(sess, "set foo bar"); res.Reply != "OK" {
		t.Fatalf("set: got %q", res.Reply)
	}
	if res := d.Dispatch(sess, "get foo"); res.Reply != "bar" {
		t.Errorf("get: got %q, want bar", res.Reply)
	}
	if res := d.Dispatch(sess, "del foo"); res.Reply != "OK" {
		t.Errorf("del: got %q", res.Reply)
	}
	if res := d.Dispatch(sess, "get foo"); res.Reply != "NULL" {
		t.Errorf("get after del: got %q, want NULL", res.Reply)
	}
}

func TestDispatcher_WrongPassword(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewSession()

	res := d.Dispatch(sess, "auth wrongpassword")
	if res.Reply != "ERROR: Invalid password" {
		t.Errorf("got %q, want invalid password error", res.Reply)
	}
	if sess.Authenticated() {
		t.Error("session should not be authenticated after a failed auth")
	}
}

func TestDispatcher_ConfigPassword(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewAuthenticatedSession()

	if res := d.Dispatch(sess, "config password newpass"); res.Reply != "OK: Password updated" {
		t.Fatalf("config password: got %q", res.Reply)
	}

	fresh := NewSession()
	if res := d.Dispatch(fresh, "auth password"); res.Reply != "ERROR: Invalid password" {
		t.Errorf("old password should no longer work, got %q", res.Reply)
	}
	if res := d.Dispatch(fresh, "auth newpass"); res.Reply != "OK: Authentication successful" {
		t.Errorf("new password should work, got %q", res.Reply)
	}
}

func TestDispatcher_ExitClosesConnection(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewAuthenticatedSession()

	res := d.Dispatch(sess, "quit")
	if !res.Close {
		t.Error("quit should set Close=true")
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := newTestDispatcher(t)
	sess := NewAuthenticatedSession()

	res := d.Dispatch(sess, "bogus")
	if res.Reply != "ERROR: Command not found" {
		t.Errorf("got %q", res.Reply)
	}
}
