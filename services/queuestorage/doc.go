// Package queuestorage is the Azure Queue storage data-plane client,
// x-ms-version 2018-03-28. Payloads are XML.
//
//	c, err := queuestorage.NewClient("https://acct.queue.core.windows.net", cred)
//	_, err = c.Queue().Create("orders").Metadata(map[string]string{"team": "a"}).Send(ctx)
//	_, err = c.Messages().Enqueue("orders", "hello").MessageTTL(3600).Send(ctx)
//
//	got, err := c.Messages().Dequeue("orders").NumOfMessages(8).Send(ctx)
//	for _, m := range got.Messages {
//	    _, err = c.MessageID().Delete("orders", m.MessageID, m.PopReceipt).Send(ctx)
//	}
//
// ListQueues is paged by the service NextMarker, which the cursor sends back
// as marker.
package queuestorage
