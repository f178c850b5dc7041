// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "avalanche-consensus",
		Short:        "Avalanche DAG consensus engine",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(simulateCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "avalanche-consensus failed: %v\n", err)
		os.Exit(1)
	}
}
