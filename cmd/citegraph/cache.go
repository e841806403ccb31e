// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fetch cache (clear, stats)",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached fetch results",
	Long: `Clear removes every entry from the in-memory tier and, when the durable
tier is enabled, from the SQLite mirror. The next identical request will
fetch fresh results.`,
	RunE: runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	eng, c, err := buildEngine(context.Background(), loadConfig(), false)
	if err != nil {
		return err
	}
	defer c.Close()

	stats := eng.CacheStats()
	if err := eng.CacheClear(); err != nil {
		return err
	}
	fmt.Printf("Cache cleared (%d entries removed).\n", stats.EntryCount)
	return nil
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage counters",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	eng, c, err := buildEngine(context.Background(), loadConfig(), false)
	if err != nil {
		return err
	}
	defer c.Close()

	stats := eng.CacheStats()
	fmt.Printf("entries: %d\nhits:    %d\nmisses:  %d\n",
		stats.EntryCount, stats.HitCount, stats.MissCount)
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)

	rootCmd.AddCommand(cacheCmd)
}
