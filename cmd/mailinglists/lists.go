package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/repository"
	"github.com/gosimple/slug"
	"github.com/spf13/cobra"
)

func newListsCommand(rt *runtimeState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage mailing lists",
	}

	cmd.AddCommand(newListsCreateCommand(rt), newListsListCommand(rt))

	return cmd
}

func newListsCreateCommand(rt *runtimeState) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			postgres, err := rt.openPostgres()
			if err != nil {
				return err
			}
			defer postgres.Close()

			list := &models.List{
				Name:        name,
				Slug:        slug.Make(name),
				Description: description,
			}
			if err := repository.NewListRepository(postgres).Create(cmd.Context(), list); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created list %d %q\n", list.ID, list.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "List name")
	cmd.Flags().StringVar(&description, "description", "", "List description")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newListsListCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show lists with subscriber counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			postgres, err := rt.openPostgres()
			if err != nil {
				return err
			}
			defer postgres.Close()

			summaries, err := repository.NewListRepository(postgres).Summaries(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSLUG\tSUBSCRIBERS")
			for _, l := range summaries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", l.ID, l.Name, l.Slug, l.SubscriberCount)
			}
			return w.Flush()
		},
	}
}
