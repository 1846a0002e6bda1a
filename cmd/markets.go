package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Heetbisht/bagasse-scout/internal/query"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List supported market codes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range query.SupportedMarkets() {
			fmt.Println(m)
		}
	},
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}
