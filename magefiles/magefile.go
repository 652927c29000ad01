//go:build mage

// Package main provides build targets for the complaints project using Mage.
//
// Usage:
//
//	mage build          Compile the complaints binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests without the race detector, verbose
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run all tests and write coverage.out
//	mage fmt            Check gofmt formatting
//	mage vet            Run go vet
//	mage lint           Run fmt, vet, then golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install complaints to GOPATH/bin
//	mage stats          Print Go lines per package and doc word counts
package main
