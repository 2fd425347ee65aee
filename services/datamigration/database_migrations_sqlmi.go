package datamigration

import (
	"context"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/validation"
)

const sqlMIMigrationPath = "/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Sql/managedInstances/%s/providers/Microsoft.DataMigration/databaseMigrations/%s"

// DatabaseMigrationsSQLMIClient groups the operations on migrations that
// target a SQL managed instance.
type DatabaseMigrationsSQLMIClient struct {
	c *Client
}

type migrationRef struct {
	subscriptionID  string
	resourceGroup   string
	managedInstance string
	targetDBName    string
}

func (r migrationRef) validate() error {
	return validation.New().
		SubscriptionID("subscriptionId", r.subscriptionID).
		ResourceGroup("resourceGroupName", r.resourceGroup).
		ResourceName("managedInstanceName", r.managedInstance).
		Required("targetDbName", r.targetDBName).
		Err()
}

func (r migrationRef) path(suffix string) string {
	return arm.ResourcePath(sqlMIMigrationPath, r.subscriptionID, r.resourceGroup, r.managedInstance, r.targetDBName) + suffix
}

// GetMigrationBuilder retrieves a migration.
type GetMigrationBuilder struct {
	c                    *Client
	ref                  migrationRef
	migrationOperationID string
	expand               string
}

// Get retrieves the migration of targetDBName on managedInstance.
func (d DatabaseMigrationsSQLMIClient) Get(subscriptionID, resourceGroup, managedInstance, targetDBName string) GetMigrationBuilder {
	return GetMigrationBuilder{c: d.c, ref: migrationRef{subscriptionID, resourceGroup, managedInstance, targetDBName}}
}

// MigrationOperationID selects one operation of the migration.
func (b GetMigrationBuilder) MigrationOperationID(id string) GetMigrationBuilder {
	b.migrationOperationID = id
	return b
}

// Expand requests additional detail, for example "MigrationStatusDetails".
func (b GetMigrationBuilder) Expand(expand string) GetMigrationBuilder {
	b.expand = expand
	return b
}

// Send performs the request. Accepts 200.
func (b GetMigrationBuilder) Send(ctx context.Context) (DatabaseMigrationSQLMI, error) {
	if err := b.ref.validate(); err != nil {
		return DatabaseMigrationSQLMI{}, err
	}
	out, _, err := decode[DatabaseMigrationSQLMI](ctx, b.c, call{
		op:     "DatabaseMigrationsSQLMI.Get",
		method: pipeline.MethodGet,
		path:   b.ref.path(""),
		query: map[string]string{
			"migrationOperationId": b.migrationOperationID,
			"$expand":              b.expand,
		},
		accepted: []arm.Status{arm.StatusOK},
	}, "DatabaseMigrationSqlMi")
	return out, err
}

// MigrationResponse is a migration together with the status it came back
// with.
type MigrationResponse struct {
	Status    arm.Status
	Migration DatabaseMigrationSQLMI
}

// CreateOrUpdateMigrationBuilder creates or replaces a migration.
type CreateOrUpdateMigrationBuilder struct {
	c          *Client
	ref        migrationRef
	parameters DatabaseMigrationSQLMI
}

// CreateOrUpdate starts or replaces the migration of targetDBName.
func (d DatabaseMigrationsSQLMIClient) CreateOrUpdate(subscriptionID, resourceGroup, managedInstance, targetDBName string, parameters DatabaseMigrationSQLMI) CreateOrUpdateMigrationBuilder {
	return CreateOrUpdateMigrationBuilder{
		c:          d.c,
		ref:        migrationRef{subscriptionID, resourceGroup, managedInstance, targetDBName},
		parameters: parameters,
	}
}

// Send performs the request and returns the first response only. Accepts
// 200 and 201.
func (b CreateOrUpdateMigrationBuilder) Send(ctx context.Context) (MigrationResponse, error) {
	if err := b.ref.validate(); err != nil {
		return MigrationResponse{}, err
	}
	out, status, err := decode[DatabaseMigrationSQLMI](ctx, b.c, call{
		op:       "DatabaseMigrationsSQLMI.CreateOrUpdate",
		method:   pipeline.MethodPut,
		path:     b.ref.path(""),
		body:     b.parameters,
		accepted: []arm.Status{arm.StatusOK, arm.StatusCreated},
	}, "DatabaseMigrationSqlMi")
	if err != nil {
		return MigrationResponse{}, err
	}
	return MigrationResponse{Status: status, Migration: out}, nil
}

// MigrationActionBuilder posts a cancel or cutover request.
type MigrationActionBuilder struct {
	c          *Client
	op         string
	action     string
	ref        migrationRef
	parameters MigrationOperationInput
}

// Cancel stops the migration operation named in parameters.
func (d DatabaseMigrationsSQLMIClient) Cancel(subscriptionID, resourceGroup, managedInstance, targetDBName string, parameters MigrationOperationInput) MigrationActionBuilder {
	return MigrationActionBuilder{
		c: d.c, op: "DatabaseMigrationsSQLMI.Cancel", action: "/cancel",
		ref:        migrationRef{subscriptionID, resourceGroup, managedInstance, targetDBName},
		parameters: parameters,
	}
}

// Cutover completes an online migration.
func (d DatabaseMigrationsSQLMIClient) Cutover(subscriptionID, resourceGroup, managedInstance, targetDBName string, parameters MigrationOperationInput) MigrationActionBuilder {
	return MigrationActionBuilder{
		c: d.c, op: "DatabaseMigrationsSQLMI.Cutover", action: "/cutover",
		ref:        migrationRef{subscriptionID, resourceGroup, managedInstance, targetDBName},
		parameters: parameters,
	}
}

// Send performs the request and returns the first response only. Accepts
// 200 and 202.
func (b MigrationActionBuilder) Send(ctx context.Context) (arm.Status, error) {
	if err := b.ref.validate(); err != nil {
		return 0, err
	}
	_, resp, status, err := b.c.send(ctx, call{
		op:       b.op,
		method:   pipeline.MethodPost,
		path:     b.ref.path(b.action),
		body:     b.parameters,
		accepted: []arm.Status{arm.StatusOK, arm.StatusAccepted},
	})
	if err != nil {
		return 0, err
	}
	_ = resp.Close()
	return status, nil
}
