// Package datamigration is the Microsoft.DataMigration management client,
// api-version 2021-10-30-preview.
//
// Every operation is a value-type builder. Required path parameters are
// arguments, optional parameters are chained setters, and Send or Pager
// performs the call:
//
//	c, err := datamigration.NewClient(cred)
//	svc, err := c.SQLMigrationServices().Get(sub, "rg", "dms1").Send(ctx)
//
//	p := c.SQLMigrationServices().ListBySubscription(sub).Pager()
//	for page, err := range p.Pages(ctx) {
//	    ...
//	}
//
// Path parameters are validated before anything is sent; a bad subscription
// id or resource group fails with an INVALID_INPUT error.
package datamigration
