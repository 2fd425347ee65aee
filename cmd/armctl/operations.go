package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/armkit/services/datamigration"
	"github.com/kbukum/armkit/util"
)

func newOperationsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Inspect the Microsoft.DataMigration provider operations",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the provider operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.dataMigrationClient()
			if err != nil {
				return err
			}
			ops, more, err := collect(cmd.Context(), client.Operations().List().Pager(), all,
				func(page datamigration.OperationListResult) []datamigration.OperationsDefinition { return page.Value })
			if err != nil {
				return err
			}

			t := &table{header: []string{"Name", "Resource", "Operation", "Data Action"}}
			for _, op := range ops {
				var resource, operation string
				if op.Display != nil {
					resource = util.Deref(op.Display.Resource)
					operation = util.Deref(op.Display.Operation)
				}
				dataAction := "no"
				if util.Deref(op.IsDataAction) {
					dataAction = "yes"
				}
				t.add(util.Deref(op.Name), resource, operation, dataAction)
			}
			if err := a.printer(cmd.OutOrStdout()).print(ops, t); err != nil {
				return err
			}
			return a.moreHint(cmd.ErrOrStderr(), more)
		},
	}
	list.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.AddCommand(list)
	return cmd
}
