//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binLint  = "golangci-lint"
	binGofmt = "gofmt"
)

// Fmt fails when any Go file is not gofmt-formatted.
func Fmt() error {
	out, err := sh.Output(binGofmt, "-l", "cmd", "internal", "pkg", "magefiles")
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(out); files != "" {
		return fmt.Errorf("files need gofmt:\n%s", files)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// Lint runs gofmt and vet checks, then golangci-lint.
func Lint() error {
	mg.Deps(Fmt, Vet)
	return sh.RunV(binLint, "run", "./...")
}
