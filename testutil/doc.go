// Package testutil holds test doubles for code built on the client: a
// scriptable gin-backed FakeServer and canned credentials.
//
//	srv := testutil.StartFakeServer(t)
//	srv.Script(http.MethodGet, "/providers/Microsoft.DataMigration/operations",
//	    testutil.JSONReply(http.StatusOK, map[string]any{"value": []any{}}))
//
//	client, err := datamigration.NewClientBuilder(testutil.StaticCredential("tok")).
//	    Endpoint(srv.URL()).
//	    Transport(srv.Client()).
//	    Build()
//
// FakeServer implements TestComponent, so it can also be driven by Setup or
// T(t).Setup and rewound with Snapshot and Restore.
package testutil
