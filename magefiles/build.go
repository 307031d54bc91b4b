//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/hearth", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go mod tidy and go vet over every package.
func (Build) Check() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the unit tests. None of them need a window or a GPU.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the subsystem tests only, verbosely.
func (Test) Systems() error {
	if _, err := executeCmd("go", withArgs("test", "-v", "./systems/...", "./containers/...", "./memory/..."), withDir("engine"), withStream()); err != nil {
		return err
	}
	return nil
}
