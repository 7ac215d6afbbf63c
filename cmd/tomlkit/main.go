// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command tomlkit reads a TOML file, runs it through the tomlkit
// pipeline, and prints the resulting semantic map plus any diagnostics.
// It mirrors cmd/cue's cobra-based shape, scaled down to tomlkit's one
// real job (spec.md §6's CLI contract).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomlkit/tomlkit"
)

func main() {
	os.Exit(Main())
}

// Main runs the root command and returns a process exit code. It is
// split out from main so script_test.go's testscript.RunMain can
// register it as the "tomlkit" subcommand of the test binary, the same
// split cmd/cue/cmd uses for its own Main/main.
func Main() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tomlkit <file>",
		Short:         "parse a TOML file and dump its semantic map and diagnostics",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE:          runDump,
	}
	return root
}

// runDump implements spec.md §6's CLI contract: read the file, run the
// pipeline, print the simple-map dump and the sorted diagnostics. Exit
// status is 0 on a successful read regardless of TOML errors — a
// malformed document is reported, not a command failure.
func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc := tomlkit.Parse(string(data))

	out := cmd.OutOrStdout()
	dumpTable(out, doc.Root, 0)
	fmt.Fprintln(out, "--- flat ---")
	dumpFlatPaths(out, doc.Root)

	for _, d := range doc.Bag.All() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.Severity, d.Message)
		for _, h := range d.Hints {
			fmt.Fprintf(cmd.ErrOrStderr(), "  note: %s (%s)\n", h.Message, h.Span)
		}
	}

	return nil
}
