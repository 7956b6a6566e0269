package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glucolog-org/coach/store"
	"github.com/glucolog-org/coach/uploads"
)

var uploadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested uploads",
	Long:  "The list command is used to retrieve a list of all ingested glucose log uploads",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(listUploads) },
}

func listUploads(service uploads.Service) error {
	page := store.DefaultPagination().WithLimit(1000)
	list, err := service.List(context.TODO(), &uploads.Filter{}, page)
	if err != nil {
		return err
	}

	for _, upload := range list {
		fmt.Printf("%s %s %s readings=%d dropped=%d\n",
			upload.Id.Hex(), upload.ReportCode, upload.Filename, len(upload.Readings), upload.DroppedRows)
	}
	fmt.Printf("Found %v uploads\n", len(list))

	return nil
}

func init() {
	uploadsCmd.AddCommand(uploadsListCmd)
}
