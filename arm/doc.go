// Package arm holds what every management and storage client shares: the
// endpoint and scope defaults, request construction, status matching,
// service error decoding, continuation links and long-running operation
// polling.
//
// A service client wraps a Client built once and reused:
//
//	c, err := arm.NewClientBuilder(cred).
//	    Endpoint("https://management.azure.com").
//	    Build()
//
//	req, err := c.NewRequest(pipeline.MethodGet, arm.ResourcePath(
//	    "/subscriptions/%s/resourceGroups/%s", sub, rg), "2021-10-30-preview")
//	resp, err := c.Send(ctx, req)
//	if _, err := arm.ExpectStatus(resp, arm.StatusOK); err != nil {
//	    return err
//	}
//
// Operations that answer 201 or 202 with Azure-AsyncOperation or Location
// can be tracked to completion with a Poller.
package arm
