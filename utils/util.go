// Copyright (c) 2025 The Ccomp Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package utils

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/pkg/errors"
)

func Assert(cond bool, format string, msg ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, msg...))
	}
}

func Any[T comparable](c T, cs ...T) bool {
	for _, cc := range cs {
		if c == cc {
			return true
		}
	}
	return false
}

func Unimplement() {
	panic("Not implement yet")
}

func ShouldNotReachHere() {
	panic("Should not reach here")
}

func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// ExecuteCmd runs args in workDir and returns its stdout. Unlike the usual
// helper that aborts the process, failures come back as errors so the driver
// can map them to the right exit code.
func ExecuteCmd(workDir string, args ...string) (string, error) {
	if !CommandExists(args[0]) {
		return "", errors.Errorf("can not find %v", args[0])
	}
	cmd := exec.Command(args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = workDir

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "%v failed: %s", args, stderr.String())
	}
	return stdout.String(), nil
}
