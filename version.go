// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"github.com/spf13/cobra"
)

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "print the compiler version",
	Long:  `Print the compiler's semantic version along with its build tag. Generated C files are tied to the version that produced them.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lc %s\n", version.String())
	},
}
