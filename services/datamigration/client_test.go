package datamigration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/resilience"
	"github.com/kbukum/armkit/testutil"
	"github.com/kbukum/armkit/util"
)

const (
	sub = "6a5d3b2e-1f4c-4e8a-9b7d-0c2e4f6a8b1d"
	rg  = "migration-rg"
)

var (
	servicesPath = "/subscriptions/" + sub + "/resourceGroups/" + rg + "/providers/Microsoft.DataMigration/sqlMigrationServices"
	dmsPath      = servicesPath + "/dms1"
)

func newTestClient(t *testing.T, srv *testutil.FakeServer) *Client {
	t.Helper()
	c, err := NewClientBuilder(testutil.StaticCredential("tok")).
		Endpoint(srv.URL()).
		Transport(srv.Client()).
		Retry(resilience.RetryConfig{MaxAttempts: 1}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func service(name string) SQLMigrationService {
	return SQLMigrationService{
		Name:     util.Ptr(name),
		Location: util.Ptr("westeurope"),
		Properties: &SQLMigrationServiceProperties{
			ProvisioningState: util.Ptr("Succeeded"),
		},
	}
}

func TestClient_Defaults(t *testing.T) {
	c, err := NewClient(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Endpoint() != "https://management.azure.com" {
		t.Errorf("unexpected endpoint %q", c.Endpoint())
	}
	if s := c.Scopes(); len(s) != 1 || s[0] != "https://management.azure.com/" {
		t.Errorf("unexpected scopes %v", s)
	}
}

func TestGet(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodGet, dmsPath, testutil.JSONReply(http.StatusOK, service("dms1")))
	c := newTestClient(t, srv)

	got, err := c.SQLMigrationServices().Get(sub, rg, "dms1").Send(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if util.Deref(got.Name) != "dms1" || util.Deref(got.Properties.ProvisioningState) != "Succeeded" {
		t.Errorf("unexpected service %+v", got)
	}
	last, _ := srv.LastRequest()
	if v := last.Query[arm.APIVersionParam]; len(v) != 1 || v[0] != APIVersion {
		t.Errorf("expected api-version once, got %v", v)
	}
	if last.Header.Get("Authorization") != "Bearer tok" {
		t.Errorf("unexpected Authorization %q", last.Header.Get("Authorization"))
	}
}

func TestGet_NotFound(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodGet, dmsPath, testutil.JSONReply(http.StatusNotFound, map[string]any{
		"error": map[string]string{"code": "ResourceNotFound", "message": "not found"},
	}))
	c := newTestClient(t, srv)

	_, err := c.SQLMigrationServices().Get(sub, rg, "dms1").Send(context.Background())
	if !errors.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected a 404 error, got %v", err)
	}
	if errors.ServerCode(err) != "ResourceNotFound" {
		t.Errorf("unexpected server code %q", errors.ServerCode(err))
	}
}

func TestPathValidation(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name string
		send func() error
	}{
		{"subscription not a uuid", func() error {
			_, err := c.SQLMigrationServices().Get("not-a-uuid", rg, "dms1").Send(ctx)
			return err
		}},
		{"empty resource group", func() error {
			_, err := c.SQLMigrationServices().Delete(sub, "", "dms1").Send(ctx)
			return err
		}},
		{"empty name", func() error {
			_, err := c.SQLMigrationServices().ListAuthKeys(sub, rg, "").Send(ctx)
			return err
		}},
		{"pager", func() error {
			_, err := c.SQLMigrationServices().ListBySubscription("").Pager().NextPage(ctx)
			return err
		}},
		{"managed instance target", func() error {
			_, err := c.DatabaseMigrationsSQLMI().Get(sub, rg, "mi1", "").Send(ctx)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no traffic, got %d requests", n)
	}
}

func TestCreateOrUpdate_StatusVariants(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodPut, dmsPath,
		testutil.JSONReply(http.StatusCreated, service("dms1")),
		testutil.JSONReply(http.StatusOK, service("dms1")),
		testutil.JSONReply(http.StatusInternalServerError, map[string]any{"error": map[string]string{"code": "InternalError"}}),
	)
	c := newTestClient(t, srv)
	b := c.SQLMigrationServices().CreateOrUpdate(sub, rg, "dms1", service("dms1"))

	resp, err := b.Send(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != arm.StatusCreated || util.Deref(resp.Service.Name) != "dms1" {
		t.Errorf("expected Created with a body, got %+v", resp)
	}
	last, _ := srv.LastRequest()
	var sent SQLMigrationService
	if err := json.Unmarshal(last.Body, &sent); err != nil || util.Deref(sent.Location) != "westeurope" {
		t.Errorf("unexpected request body %s", last.Body)
	}
	if ct := last.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected Content-Type %q", ct)
	}

	if resp, err := b.Send(context.Background()); err != nil || resp.Status != arm.StatusOK {
		t.Errorf("expected OK, got %+v, %v", resp, err)
	}

	_, err = b.Send(context.Background())
	if !errors.IsStatus(err, http.StatusInternalServerError) || !errors.HasCode(err, errors.ErrCodeHTTPResponse) {
		t.Errorf("expected a generic 500 error, got %v", err)
	}
}

func TestBeginCreateOrUpdate(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodPut, dmsPath,
		testutil.JSONReply(http.StatusCreated, SQLMigrationService{
			Name:       util.Ptr("dms1"),
			Properties: &SQLMigrationServiceProperties{ProvisioningState: util.Ptr("Provisioning")},
		}).WithHeader(arm.HeaderAzureAsyncOperation, "/operations/op1"))
	srv.Script(http.MethodGet, "/operations/op1",
		testutil.JSONReply(http.StatusOK, map[string]string{"status": "InProgress"}),
		testutil.JSONReply(http.StatusOK, map[string]string{"status": "Succeeded"}),
	)
	srv.Script(http.MethodGet, dmsPath, testutil.JSONReply(http.StatusOK, service("dms1")))
	c := newTestClient(t, srv)

	poller, err := c.SQLMigrationServices().CreateOrUpdate(sub, rg, "dms1", service("dms1")).
		Begin(context.Background(), &arm.PollerOptions{Frequency: time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := poller.PollUntilDone(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if util.Deref(got.Properties.ProvisioningState) != "Succeeded" {
		t.Errorf("expected the provisioned resource, got %+v", got)
	}
	if n := srv.Count(http.MethodGet, "/operations/op1"); n != 2 {
		t.Errorf("expected 2 polls, got %d", n)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodPatch, dmsPath, testutil.JSONReply(http.StatusOK, service("dms1")))
	srv.Script(http.MethodDelete, dmsPath,
		testutil.StatusReply(http.StatusAccepted),
		testutil.StatusReply(http.StatusNoContent),
		testutil.StatusReply(http.StatusCreated),
	)
	c := newTestClient(t, srv)
	ctx := context.Background()

	resp, err := c.SQLMigrationServices().Update(sub, rg, "dms1", SQLMigrationServiceUpdate{Tags: map[string]string{"env": "dev"}}).Send(ctx)
	if err != nil || resp.Status != arm.StatusOK {
		t.Fatalf("unexpected result %+v, %v", resp, err)
	}
	last, _ := srv.LastRequest()
	if last.Method != http.MethodPatch || string(last.Body) != `{"tags":{"env":"dev"}}` {
		t.Errorf("unexpected PATCH %s %s", last.Method, last.Body)
	}

	del := c.SQLMigrationServices().Delete(sub, rg, "dms1")
	for _, want := range []arm.Status{arm.StatusAccepted, arm.StatusNoContent} {
		if got, err := del.Send(ctx); err != nil || got != want {
			t.Errorf("expected %v, got %v, %v", want, got, err)
		}
	}
	if _, err := del.Send(ctx); !errors.IsStatus(err, http.StatusCreated) {
		t.Errorf("201 is not an accepted delete status, got %v", err)
	}
}

func TestServiceActions(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodPost, dmsPath+"/listAuthKeys", testutil.JSONReply(http.StatusOK, AuthenticationKeys{AuthKey1: util.Ptr("k1"), AuthKey2: util.Ptr("k2")}))
	srv.Script(http.MethodPost, dmsPath+"/regenerateAuthKeys", testutil.JSONReply(http.StatusOK, RegenAuthKeys{AuthKey1: util.Ptr("n1")}))
	srv.Script(http.MethodPost, dmsPath+"/deleteNode", testutil.JSONReply(http.StatusOK, DeleteNode{NodeName: util.Ptr("node1")}))
	srv.Script(http.MethodPost, dmsPath+"/listMonitoringData", testutil.JSONReply(http.StatusOK, IntegrationRuntimeMonitoringData{
		Name:  util.Ptr("ir"),
		Nodes: []NodeMonitoringData{{NodeName: util.Ptr("node1"), CPUUtilization: util.Ptr[int32](40)}},
	}))
	c := newTestClient(t, srv)
	svc := c.SQLMigrationServices()
	ctx := context.Background()

	keys, err := svc.ListAuthKeys(sub, rg, "dms1").Send(ctx)
	if err != nil || util.Deref(keys.AuthKey2) != "k2" {
		t.Errorf("unexpected keys %+v, %v", keys, err)
	}

	regen, err := svc.RegenerateAuthKeys(sub, rg, "dms1", RegenAuthKeys{KeyName: util.Ptr("authKey1")}).Send(ctx)
	if err != nil || util.Deref(regen.AuthKey1) != "n1" {
		t.Errorf("unexpected regenerated keys %+v, %v", regen, err)
	}
	last, _ := srv.LastRequest()
	if string(last.Body) != `{"keyName":"authKey1"}` {
		t.Errorf("unexpected body %s", last.Body)
	}

	node, err := svc.DeleteNode(sub, rg, "dms1", DeleteNode{NodeName: util.Ptr("node1"), IntegrationRuntimeName: util.Ptr("ir")}).Send(ctx)
	if err != nil || util.Deref(node.NodeName) != "node1" {
		t.Errorf("unexpected node %+v, %v", node, err)
	}

	data, err := svc.ListMonitoringData(sub, rg, "dms1").Send(ctx)
	if err != nil || len(data.Nodes) != 1 || util.Deref(data.Nodes[0].CPUUtilization) != 40 {
		t.Errorf("unexpected monitoring data %+v, %v", data, err)
	}
	last, _ = srv.LastRequest()
	if last.Method != http.MethodPost || len(last.Body) != 0 {
		t.Errorf("expected an empty POST, got %s with %d bytes", last.Method, len(last.Body))
	}
}

func TestOperationsList_SinglePage(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodGet, operationsPath, testutil.Reply{
		Status: http.StatusOK,
		Body:   `{"value":[{"name":"Microsoft.DataMigration/services/read"}],"nextLink":null}`,
	})
	c := newTestClient(t, srv)

	p := c.Operations().List().Pager()
	page, err := p.NextPage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Value) != 1 || util.Deref(page.Value[0].Name) != "Microsoft.DataMigration/services/read" {
		t.Errorf("unexpected page %+v", page)
	}
	if p.More() {
		t.Error("a null nextLink terminates the cursor")
	}
}

// scriptThreePages serves P1(t1), P2(t2), P3(none). The first link is
// absolute without api-version, the second relative with one.
func scriptThreePages(srv *testutil.FakeServer) {
	srv.Script(http.MethodGet, servicesPath, testutil.JSONReply(http.StatusOK, SQLMigrationListResult{
		Value:    []SQLMigrationService{service("a")},
		NextLink: util.Ptr(srv.URL() + "/page2?$skiptoken=t1"),
	}))
	srv.Script(http.MethodGet, "/page2", testutil.JSONReply(http.StatusOK, SQLMigrationListResult{
		Value:    []SQLMigrationService{service("b")},
		NextLink: util.Ptr("/page3?api-version=" + APIVersion + "&$skiptoken=t2"),
	}))
	srv.Script(http.MethodGet, "/page3", testutil.JSONReply(http.StatusOK, SQLMigrationListResult{
		Value: []SQLMigrationService{service("c")},
	}))
}

func names(pages []SQLMigrationListResult) string {
	var out []string
	for _, p := range pages {
		for _, s := range p.Value {
			out = append(out, util.Deref(s.Name))
		}
	}
	return fmt.Sprint(out)
}

func TestListByResourceGroup_FollowsContinuation(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	scriptThreePages(srv)
	c := newTestClient(t, srv)

	pages, err := c.SQLMigrationServices().ListByResourceGroup(sub, rg).Pager().All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := names(pages); got != "[a b c]" {
		t.Errorf("expected pages in order, got %s", got)
	}

	reqs := srv.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(reqs))
	}
	wantSkip := []string{"", "t1", "t2"}
	for i, r := range reqs {
		if v := r.Query[arm.APIVersionParam]; len(v) != 1 || v[0] != APIVersion {
			t.Errorf("request %d: expected api-version exactly once, got %v", i, v)
		}
		if r.Query.Get("$skiptoken") != wantSkip[i] {
			t.Errorf("request %d: expected skiptoken %q, got %q", i, wantSkip[i], r.Query.Get("$skiptoken"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("request %d: continuation must reuse auth", i)
		}
	}
}

func TestListByResourceGroup_Deterministic(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	scriptThreePages(srv)
	c := newTestClient(t, srv)
	b := c.SQLMigrationServices().ListByResourceGroup(sub, rg)

	first, err := b.Pager().All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.Pager().All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names(first) != names(second) {
		t.Errorf("expected identical sequences, got %s and %s", names(first), names(second))
	}
}

func TestListBySubscriptionAndMigrations(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodGet, "/subscriptions/"+sub+"/providers/Microsoft.DataMigration/sqlMigrationServices",
		testutil.JSONReply(http.StatusOK, SQLMigrationListResult{Value: []SQLMigrationService{service("x")}}))
	srv.Script(http.MethodGet, dmsPath+"/listMigrations", testutil.JSONReply(http.StatusOK, DatabaseMigrationListResult{
		Value: []DatabaseMigration{{Name: util.Ptr("db1"), Properties: &DatabaseMigrationProperties{MigrationStatus: util.Ptr("InProgress")}}},
	}))
	c := newTestClient(t, srv)
	ctx := context.Background()

	subs, err := c.SQLMigrationServices().ListBySubscription(sub).Pager().All(ctx)
	if err != nil || names(subs) != "[x]" {
		t.Errorf("unexpected services %s, %v", names(subs), err)
	}

	migrations, err := c.SQLMigrationServices().ListMigrations(sub, rg, "dms1").Pager().All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 || util.Deref(migrations[0].Value[0].Properties.MigrationStatus) != "InProgress" {
		t.Errorf("unexpected migrations %+v", migrations)
	}
}

func TestListPager_ErrorIsSticky(t *testing.T) {
	srv := testutil.StartFakeServer(t)
	srv.Script(http.MethodGet, servicesPath, testutil.JSONReply(http.StatusOK, SQLMigrationListResult{
		NextLink: util.Ptr("/broken"),
	}))
	srv.Script(http.MethodGet, "/broken", testutil.JSONReply(http.StatusBadRequest, map[string]any{"error": map[string]string{"code": "BadSkipToken"}}))
	c := newTestClient(t, srv)

	p := c.SQLMigrationServices().ListByResourceGroup(sub, rg).Pager()
	if _, err := p.NextPage(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := p.NextPage(context.Background()); errors.ServerCode(err) != "BadSkipToken" {
			t.Errorf("call %d: expected the same failure, got %v", i, err)
		}
	}
	if n := srv.Count(http.MethodGet, "/broken"); n != 1 {
		t.Errorf("expected a single failing fetch, got %d", n)
	}
}
