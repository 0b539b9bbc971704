package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List splits staged against an index",
	Long:  `Status opens the metastore and prints every split staged against --index.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, closeStore := openMetastore()
	defer closeStore()

	ctx := context.Background()
	exists, err := store.IndexExists(ctx, indexID)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Printf("index %q does not exist\n", indexID)
		return nil
	}

	splits, err := store.ListSplits(ctx, indexID)
	if err != nil {
		return err
	}

	if len(splits) == 0 {
		fmt.Printf("index %q has no staged splits\n", indexID)
		return nil
	}

	for _, s := range splits {
		fmt.Printf(
			"%s\tdocs=%d\tcreated=%s\n",
			s.SplitID, s.NumDocs, s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		)
	}
	return nil
}
