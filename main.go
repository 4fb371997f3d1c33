// Stepwise - Watch algorithms run one step at a time
//
// Copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.

package main

import (
	"os"

	"github.com/manav03panchal/stepwise/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
