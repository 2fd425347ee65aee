// Package validation checks operation parameters and configuration before a
// request leaves the process.
//
// Builders use the fluent Validator for path and query parameters:
//
//	err := validation.New().
//	    SubscriptionID("subscriptionId", sub).
//	    ResourceGroup("resourceGroupName", rg).
//	    ResourceName("sqlMigrationServiceName", name).
//	    Err()
//
// Configuration structs use `validate` struct tags through Validate, with the
// extra tags resource_group and queue_name registered on top of the
// go-playground/validator built-ins.
package validation
