// session.go: per-connection authentication state.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package dispatcher

import "sync"

// Session tracks one connection's authentication state. The console front
// end uses a Session that is pre-authenticated (no network boundary to
// protect); the TCP front end creates one fresh, unauthenticated Session
// per accepted connection, per §6.3.
type Session struct {
	mu            sync.Mutex
	authenticated bool
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// NewAuthenticatedSession returns a session that has already passed auth,
// for front ends with no separate authentication boundary (the console).
func NewAuthenticatedSession() *Session {
	return &Session{authenticated: true}
}

func (s *Session) authenticate() {
	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
}

// Authenticated reports whether this session has passed auth.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}
