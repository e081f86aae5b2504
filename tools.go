//go:build tools
// +build tools

// tools.go: developer-time dependencies, never imported by runtime code.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	_ "github.com/dkorunic/betteralign/cmd/betteralign"
)
