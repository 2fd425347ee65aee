package datamigration

import (
	"context"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/pager"
	"github.com/kbukum/armkit/pipeline"
	"github.com/kbukum/armkit/validation"
)

const (
	servicePath       = "/subscriptions/%s/resourceGroups/%s/providers/Microsoft.DataMigration/sqlMigrationServices/%s"
	servicesInRGPath  = "/subscriptions/%s/resourceGroups/%s/providers/Microsoft.DataMigration/sqlMigrationServices"
	servicesInSubPath = "/subscriptions/%s/providers/Microsoft.DataMigration/sqlMigrationServices"
)

// SQLMigrationServicesClient groups the sqlMigrationServices operations.
// Every method returns a builder; nothing is sent until Send or Pager.
type SQLMigrationServicesClient struct {
	c *Client
}

// serviceRef is the path of one SQL migration service.
type serviceRef struct {
	subscriptionID string
	resourceGroup  string
	name           string
}

func (r serviceRef) validate() error {
	return validation.New().
		SubscriptionID("subscriptionId", r.subscriptionID).
		ResourceGroup("resourceGroupName", r.resourceGroup).
		ResourceName("sqlMigrationServiceName", r.name).
		Err()
}

func (r serviceRef) path(suffix string) string {
	return arm.ResourcePath(servicePath, r.subscriptionID, r.resourceGroup, r.name) + suffix
}

// GetServiceBuilder retrieves a service.
type GetServiceBuilder struct {
	c   *Client
	ref serviceRef
}

// Get retrieves the service name in resourceGroup.
func (s SQLMigrationServicesClient) Get(subscriptionID, resourceGroup, name string) GetServiceBuilder {
	return GetServiceBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}}
}

// Send performs the request. Accepts 200.
func (b GetServiceBuilder) Send(ctx context.Context) (SQLMigrationService, error) {
	if err := b.ref.validate(); err != nil {
		return SQLMigrationService{}, err
	}
	out, _, err := decode[SQLMigrationService](ctx, b.c, call{
		op:       "SQLMigrationServices.Get",
		method:   pipeline.MethodGet,
		path:     b.ref.path(""),
		accepted: []arm.Status{arm.StatusOK},
	}, "SQLMigrationService")
	return out, err
}

// ServiceResponse is a service together with the status it came back with.
type ServiceResponse struct {
	Status  arm.Status
	Service SQLMigrationService
}

// CreateOrUpdateServiceBuilder creates or replaces a service.
type CreateOrUpdateServiceBuilder struct {
	c          *Client
	ref        serviceRef
	parameters SQLMigrationService
}

// CreateOrUpdate creates or replaces the service name with parameters.
func (s SQLMigrationServicesClient) CreateOrUpdate(subscriptionID, resourceGroup, name string, parameters SQLMigrationService) CreateOrUpdateServiceBuilder {
	return CreateOrUpdateServiceBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}, parameters: parameters}
}

func (b CreateOrUpdateServiceBuilder) call() call {
	return call{
		op:     "SQLMigrationServices.CreateOrUpdate",
		method: pipeline.MethodPut,
		path:   b.ref.path(""),
		body:   b.parameters,
	}
}

// Send performs the request and returns the first response only. Accepts
// 200 and 201.
func (b CreateOrUpdateServiceBuilder) Send(ctx context.Context) (ServiceResponse, error) {
	if err := b.ref.validate(); err != nil {
		return ServiceResponse{}, err
	}
	cl := b.call()
	cl.accepted = []arm.Status{arm.StatusOK, arm.StatusCreated}
	out, status, err := decode[SQLMigrationService](ctx, b.c, cl, "SQLMigrationService")
	if err != nil {
		return ServiceResponse{}, err
	}
	return ServiceResponse{Status: status, Service: out}, nil
}

// Begin sends the request and returns a poller that follows the operation
// until the service is provisioned.
func (b CreateOrUpdateServiceBuilder) Begin(ctx context.Context, opts *arm.PollerOptions) (*arm.Poller[SQLMigrationService], error) {
	if err := b.ref.validate(); err != nil {
		return nil, err
	}
	cl := b.call()
	cl.accepted = []arm.Status{arm.StatusOK, arm.StatusCreated, arm.StatusAccepted}
	req, resp, _, err := b.c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	return arm.NewPoller[SQLMigrationService](b.c.arm, req, resp, opts)
}

// UpdateServiceBuilder patches a service.
type UpdateServiceBuilder struct {
	c          *Client
	ref        serviceRef
	parameters SQLMigrationServiceUpdate
}

// Update patches the tags of the service name.
func (s SQLMigrationServicesClient) Update(subscriptionID, resourceGroup, name string, parameters SQLMigrationServiceUpdate) UpdateServiceBuilder {
	return UpdateServiceBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}, parameters: parameters}
}

// Send performs the request. Accepts 200 and 201.
func (b UpdateServiceBuilder) Send(ctx context.Context) (ServiceResponse, error) {
	if err := b.ref.validate(); err != nil {
		return ServiceResponse{}, err
	}
	out, status, err := decode[SQLMigrationService](ctx, b.c, call{
		op:       "SQLMigrationServices.Update",
		method:   pipeline.MethodPatch,
		path:     b.ref.path(""),
		body:     b.parameters,
		accepted: []arm.Status{arm.StatusOK, arm.StatusCreated},
	}, "SQLMigrationService")
	if err != nil {
		return ServiceResponse{}, err
	}
	return ServiceResponse{Status: status, Service: out}, nil
}

// DeleteServiceBuilder deletes a service.
type DeleteServiceBuilder struct {
	c   *Client
	ref serviceRef
}

// Delete removes the service name.
func (s SQLMigrationServicesClient) Delete(subscriptionID, resourceGroup, name string) DeleteServiceBuilder {
	return DeleteServiceBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}}
}

// Send performs the request and returns the first response only. Accepts
// 200, 202 and 204.
func (b DeleteServiceBuilder) Send(ctx context.Context) (arm.Status, error) {
	if err := b.ref.validate(); err != nil {
		return 0, err
	}
	_, resp, status, err := b.c.send(ctx, call{
		op:       "SQLMigrationServices.Delete",
		method:   pipeline.MethodDelete,
		path:     b.ref.path(""),
		accepted: []arm.Status{arm.StatusOK, arm.StatusAccepted, arm.StatusNoContent},
	})
	if err != nil {
		return 0, err
	}
	_ = resp.Close()
	return status, nil
}

// ListServicesByResourceGroupBuilder pages through the services of a
// resource group.
type ListServicesByResourceGroupBuilder struct {
	c              *Client
	subscriptionID string
	resourceGroup  string
}

// ListByResourceGroup lists the services in resourceGroup.
func (s SQLMigrationServicesClient) ListByResourceGroup(subscriptionID, resourceGroup string) ListServicesByResourceGroupBuilder {
	return ListServicesByResourceGroupBuilder{c: s.c, subscriptionID: subscriptionID, resourceGroup: resourceGroup}
}

// Pager returns a cursor over the pages. Each page accepts 200.
func (b ListServicesByResourceGroupBuilder) Pager() *pager.Pager[SQLMigrationListResult] {
	return newPager(b.c, "SQLMigrationServices.ListByResourceGroup",
		arm.ResourcePath(servicesInRGPath, b.subscriptionID, b.resourceGroup),
		func() error {
			return validation.New().
				SubscriptionID("subscriptionId", b.subscriptionID).
				ResourceGroup("resourceGroupName", b.resourceGroup).
				Err()
		},
		func(p SQLMigrationListResult) *string { return p.NextLink })
}

// ListServicesBySubscriptionBuilder pages through the services of a
// subscription.
type ListServicesBySubscriptionBuilder struct {
	c              *Client
	subscriptionID string
}

// ListBySubscription lists every service in the subscription.
func (s SQLMigrationServicesClient) ListBySubscription(subscriptionID string) ListServicesBySubscriptionBuilder {
	return ListServicesBySubscriptionBuilder{c: s.c, subscriptionID: subscriptionID}
}

// Pager returns a cursor over the pages. Each page accepts 200.
func (b ListServicesBySubscriptionBuilder) Pager() *pager.Pager[SQLMigrationListResult] {
	return newPager(b.c, "SQLMigrationServices.ListBySubscription",
		arm.ResourcePath(servicesInSubPath, b.subscriptionID),
		func() error {
			return validation.New().SubscriptionID("subscriptionId", b.subscriptionID).Err()
		},
		func(p SQLMigrationListResult) *string { return p.NextLink })
}

// ListAuthKeysBuilder retrieves the integration runtime keys.
type ListAuthKeysBuilder struct {
	c   *Client
	ref serviceRef
}

// ListAuthKeys retrieves the self-hosted integration runtime keys.
func (s SQLMigrationServicesClient) ListAuthKeys(subscriptionID, resourceGroup, name string) ListAuthKeysBuilder {
	return ListAuthKeysBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}}
}

// Send performs the request. Accepts 200.
func (b ListAuthKeysBuilder) Send(ctx context.Context) (AuthenticationKeys, error) {
	if err := b.ref.validate(); err != nil {
		return AuthenticationKeys{}, err
	}
	out, _, err := decode[AuthenticationKeys](ctx, b.c, call{
		op:       "SQLMigrationServices.ListAuthKeys",
		method:   pipeline.MethodPost,
		path:     b.ref.path("/listAuthKeys"),
		accepted: []arm.Status{arm.StatusOK},
	}, "AuthenticationKeys")
	return out, err
}

// RegenerateAuthKeysBuilder rotates an integration runtime key.
type RegenerateAuthKeysBuilder struct {
	c          *Client
	ref        serviceRef
	parameters RegenAuthKeys
}

// RegenerateAuthKeys rotates the key named in parameters.
func (s SQLMigrationServicesClient) RegenerateAuthKeys(subscriptionID, resourceGroup, name string, parameters RegenAuthKeys) RegenerateAuthKeysBuilder {
	return RegenerateAuthKeysBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}, parameters: parameters}
}

// Send performs the request. Accepts 200.
func (b RegenerateAuthKeysBuilder) Send(ctx context.Context) (RegenAuthKeys, error) {
	if err := b.ref.validate(); err != nil {
		return RegenAuthKeys{}, err
	}
	out, _, err := decode[RegenAuthKeys](ctx, b.c, call{
		op:       "SQLMigrationServices.RegenerateAuthKeys",
		method:   pipeline.MethodPost,
		path:     b.ref.path("/regenerateAuthKeys"),
		body:     b.parameters,
		accepted: []arm.Status{arm.StatusOK},
	}, "RegenAuthKeys")
	return out, err
}

// DeleteNodeBuilder removes an integration runtime node.
type DeleteNodeBuilder struct {
	c          *Client
	ref        serviceRef
	parameters DeleteNode
}

// DeleteNode removes the node named in parameters.
func (s SQLMigrationServicesClient) DeleteNode(subscriptionID, resourceGroup, name string, parameters DeleteNode) DeleteNodeBuilder {
	return DeleteNodeBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}, parameters: parameters}
}

// Send performs the request. Accepts 200.
func (b DeleteNodeBuilder) Send(ctx context.Context) (DeleteNode, error) {
	if err := b.ref.validate(); err != nil {
		return DeleteNode{}, err
	}
	out, _, err := decode[DeleteNode](ctx, b.c, call{
		op:       "SQLMigrationServices.DeleteNode",
		method:   pipeline.MethodPost,
		path:     b.ref.path("/deleteNode"),
		body:     b.parameters,
		accepted: []arm.Status{arm.StatusOK},
	}, "DeleteNode")
	return out, err
}

// ListMigrationsBuilder pages through the migrations of a service.
type ListMigrationsBuilder struct {
	c   *Client
	ref serviceRef
}

// ListMigrations lists the database migrations attached to the service.
func (s SQLMigrationServicesClient) ListMigrations(subscriptionID, resourceGroup, name string) ListMigrationsBuilder {
	return ListMigrationsBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}}
}

// Pager returns a cursor over the pages. Each page accepts 200.
func (b ListMigrationsBuilder) Pager() *pager.Pager[DatabaseMigrationListResult] {
	return newPager(b.c, "SQLMigrationServices.ListMigrations", b.ref.path("/listMigrations"),
		b.ref.validate,
		func(p DatabaseMigrationListResult) *string { return p.NextLink })
}

// ListMonitoringDataBuilder retrieves integration runtime monitoring data.
type ListMonitoringDataBuilder struct {
	c   *Client
	ref serviceRef
}

// ListMonitoringData retrieves the runtime node load of the service.
func (s SQLMigrationServicesClient) ListMonitoringData(subscriptionID, resourceGroup, name string) ListMonitoringDataBuilder {
	return ListMonitoringDataBuilder{c: s.c, ref: serviceRef{subscriptionID, resourceGroup, name}}
}

// Send performs the request, a POST without a body. Accepts 200.
func (b ListMonitoringDataBuilder) Send(ctx context.Context) (IntegrationRuntimeMonitoringData, error) {
	if err := b.ref.validate(); err != nil {
		return IntegrationRuntimeMonitoringData{}, err
	}
	out, _, err := decode[IntegrationRuntimeMonitoringData](ctx, b.c, call{
		op:       "SQLMigrationServices.ListMonitoringData",
		method:   pipeline.MethodPost,
		path:     b.ref.path("/listMonitoringData"),
		accepted: []arm.Status{arm.StatusOK},
	}, "IntegrationRuntimeMonitoringData")
	return out, err
}
