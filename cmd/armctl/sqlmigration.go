package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/armkit/pager"
	"github.com/kbukum/armkit/services/datamigration"
	"github.com/kbukum/armkit/util"
)

func (a *app) dataMigrationClient() (*datamigration.Client, error) {
	cred, err := a.credential()
	if err != nil {
		return nil, err
	}
	return datamigration.NewClientBuilder(cred).FromConfig(&a.cfg).Build()
}

func newSQLMigrationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sql-migration",
		Aliases: []string{"dms"},
		Short:   "Manage SQL migration services",
	}
	cmd.AddCommand(
		newSQLMigrationListCommand(a),
		newSQLMigrationGetCommand(a),
		newSQLMigrationDeleteCommand(a),
		newSQLMigrationAuthKeysCommand(a),
	)
	return cmd
}

func newSQLMigrationListCommand(a *app) *cobra.Command {
	var (
		resourceGroup string
		all           bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List SQL migration services of the subscription or a resource group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := a.subscription()
			if err != nil {
				return err
			}
			client, err := a.dataMigrationClient()
			if err != nil {
				return err
			}
			var p *pager.Pager[datamigration.SQLMigrationListResult]
			if resourceGroup != "" {
				p = client.SQLMigrationServices().ListByResourceGroup(sub, resourceGroup).Pager()
			} else {
				p = client.SQLMigrationServices().ListBySubscription(sub).Pager()
			}
			services, more, err := collect(cmd.Context(), p, all, func(page datamigration.SQLMigrationListResult) []datamigration.SQLMigrationService {
				return page.Value
			})
			if err != nil {
				return err
			}

			t := &table{header: []string{"Name", "Location", "Provisioning State", "Runtime State"}}
			for _, s := range services {
				var state, runtime string
				if s.Properties != nil {
					state = util.Deref(s.Properties.ProvisioningState)
					runtime = util.Deref(s.Properties.IntegrationRuntimeState)
				}
				t.add(util.Deref(s.Name), util.Deref(s.Location), state, runtime)
			}
			if err := a.printer(cmd.OutOrStdout()).print(services, t); err != nil {
				return err
			}
			return a.moreHint(cmd.ErrOrStderr(), more)
		},
	}
	cmd.Flags().StringVarP(&resourceGroup, "resource-group", "g", "", "resource group")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	return cmd
}

func newSQLMigrationGetCommand(a *app) *cobra.Command {
	var resourceGroup string
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show a SQL migration service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.subscription()
			if err != nil {
				return err
			}
			client, err := a.dataMigrationClient()
			if err != nil {
				return err
			}
			s, err := client.SQLMigrationServices().Get(sub, resourceGroup, args[0]).Send(cmd.Context())
			if err != nil {
				return err
			}

			t := &table{header: []string{"Property", "Value"}}
			t.add("Name", util.Deref(s.Name))
			t.add("ID", util.Deref(s.ID))
			t.add("Location", util.Deref(s.Location))
			if s.Properties != nil {
				t.add("Provisioning State", util.Deref(s.Properties.ProvisioningState))
				t.add("Runtime State", util.Deref(s.Properties.IntegrationRuntimeState))
			}
			return a.printer(cmd.OutOrStdout()).print(s, t)
		},
	}
	cmd.Flags().StringVarP(&resourceGroup, "resource-group", "g", "", "resource group (required)")
	_ = cmd.MarkFlagRequired("resource-group")
	return cmd
}

func newSQLMigrationDeleteCommand(a *app) *cobra.Command {
	var resourceGroup string
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a SQL migration service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.subscription()
			if err != nil {
				return err
			}
			client, err := a.dataMigrationClient()
			if err != nil {
				return err
			}
			status, err := client.SQLMigrationServices().Delete(sub, resourceGroup, args[0]).Send(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", args[0], status)
			return err
		},
	}
	cmd.Flags().StringVarP(&resourceGroup, "resource-group", "g", "", "resource group (required)")
	_ = cmd.MarkFlagRequired("resource-group")
	return cmd
}

func newSQLMigrationAuthKeysCommand(a *app) *cobra.Command {
	var resourceGroup string
	cmd := &cobra.Command{
		Use:   "auth-keys NAME",
		Short: "Show the integration runtime authentication keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.subscription()
			if err != nil {
				return err
			}
			client, err := a.dataMigrationClient()
			if err != nil {
				return err
			}
			keys, err := client.SQLMigrationServices().ListAuthKeys(sub, resourceGroup, args[0]).Send(cmd.Context())
			if err != nil {
				return err
			}
			t := &table{header: []string{"Key", "Value"}}
			t.add("authKey1", util.Deref(keys.AuthKey1))
			t.add("authKey2", util.Deref(keys.AuthKey2))
			return a.printer(cmd.OutOrStdout()).print(keys, t)
		},
	}
	cmd.Flags().StringVarP(&resourceGroup, "resource-group", "g", "", "resource group (required)")
	_ = cmd.MarkFlagRequired("resource-group")
	return cmd
}

// collect reads the first page, or every page when all is set. more reports
// whether pages were left unread.
func collect[T, V any](ctx context.Context, p *pager.Pager[T], all bool, values func(T) []V) ([]V, bool, error) {
	if all {
		items, err := pager.CollectItems(ctx, p, values)
		return items, false, err
	}
	page, err := p.NextPage(ctx)
	if err != nil {
		return nil, false, err
	}
	return values(page), p.More(), nil
}

func (a *app) moreHint(w io.Writer, more bool) error {
	if !more || a.opts.output != outputTable {
		return nil
	}
	_, err := fmt.Fprintln(w, "\nMore results are available. Use --all to fetch every page.")
	return err
}
