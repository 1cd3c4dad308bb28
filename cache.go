// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"log"

	"github.com/playbymail/lc/stores/sqlite"
	"github.com/spf13/cobra"
)

var argsCache struct {
	path  string
	force bool
}

var cmdCache = &cobra.Command{
	Use:   "cache",
	Short: "manage the module cache",
	Long:  `Create and inspect the module cache database.`,
}

var cmdCacheCreate = &cobra.Command{
	Use:   "create",
	Short: "create a new module cache database",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := sqlite.CreateStore(argsCache.path, argsCache.force, context.Background())
		if err != nil {
			log.Fatalf("cache: create: %v\n", err)
		}
		defer func() { _ = store.Close() }()
		log.Printf("cache: created %q\n", argsCache.path)
	},
}

var cmdCacheShow = &cobra.Command{
	Use:   "show",
	Short: "list cached module entries",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := sqlite.OpenStore(argsCache.path, context.Background())
		if err != nil {
			log.Fatalf("cache: open: %v\n", err)
		}
		defer func() { _ = store.Close() }()
		rows, err := store.ListModules()
		if err != nil {
			log.Fatalf("cache: list: %v\n", err)
		}
		for _, r := range rows {
			log.Printf("cache: %s %s exports=%d deps=%d compiler=%s\n",
				r.Name, r.ContentHash[:12], len(r.Exports), len(r.Dependencies), r.Compiler)
		}
	},
}
