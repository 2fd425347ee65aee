package datamigration

import "github.com/kbukum/armkit/pager"

const operationsPath = "/providers/Microsoft.DataMigration/operations"

// OperationsClient lists the operations the provider supports.
type OperationsClient struct {
	c *Client
}

// ListOperationsBuilder pages through the provider operations.
type ListOperationsBuilder struct {
	c *Client
}

// List lists every Microsoft.DataMigration operation.
func (o OperationsClient) List() ListOperationsBuilder {
	return ListOperationsBuilder{c: o.c}
}

// Pager returns a cursor over the pages. Each page accepts 200.
func (b ListOperationsBuilder) Pager() *pager.Pager[OperationListResult] {
	return newPager(b.c, "Operations.List", operationsPath,
		func() error { return nil },
		func(p OperationListResult) *string { return p.NextLink })
}
