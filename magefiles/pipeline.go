//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run fills, converts, and mails a document for every roster row.
func Run() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "run")
}

// DryRun fills and converts every document without sending mail.
func DryRun() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "run", "--dry-run")
}

// Summarize writes only the hours summary workbook.
func Summarize() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "summarize")
}

// History lists the deliveries recorded by previous runs.
func History() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "history")
}
