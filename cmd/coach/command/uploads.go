package command

import (
	"github.com/spf13/cobra"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "Glucose log uploads",
	Long:  "The uploads command is used to manage ingested glucose log uploads",
}

func init() {
	rootCmd.AddCommand(uploadsCmd)
}
