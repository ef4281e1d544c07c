// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/scriptpack/scriptpack/cmd/scriptpack"

func main() {
	cmd.Execute()
}
