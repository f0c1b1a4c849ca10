//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the biblio project using Mage.
//
// Usage:
//
//	mage build       Compile biblio and biblio-api to bin/
//	mage test:all    Run all tests
//	mage test:unit   Run tests in short mode
//	mage lint        Check gofmt, run go vet and golangci-lint
//	mage vet         Run go vet
//	mage fmt         List files that need gofmt
//	mage clean       Remove build artifacts
//	mage install     Install both binaries to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryDir  = "bin"
	modulePath = "github.com/mesh-intelligence/biblio"
)

// binaries maps each binary name to its main package.
var binaries = map[string]string{
	"biblio":     "./cmd/biblio",
	"biblio-api": "./cmd/biblio-api",
}

// ldflags stamps the version from BIBLIO_VERSION when set.
func ldflags() string {
	v := os.Getenv("BIBLIO_VERSION")
	if v == "" {
		return ""
	}
	return "-X " + modulePath + "/internal/cli.Version=" + v
}

// Build compiles the biblio binaries to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	for name, pkg := range binaries {
		if err := sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, name), pkg); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binaries to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	for name := range binaries {
		src := filepath.Join(binaryDir, name)
		dst := filepath.Join(gopath, "bin", name)
		if err := sh.Copy(dst, src); err != nil {
			return err
		}
	}
	return nil
}
