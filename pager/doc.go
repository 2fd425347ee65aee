// Package pager iterates paginated collections.
//
// A collection operation supplies a Handler: a Fetcher that retrieves one
// page for an optional continuation token and a NextLink that extracts the
// token for the following page. The Pager keeps only that token as state,
// so two pagers built from the same inputs walk the same sequence.
//
//	p := client.ListByResourceGroup(sub, rg).Pager()
//	for p.More() {
//	    page, err := p.NextPage(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    for _, svc := range page.Value {
//	        ...
//	    }
//	}
//
// Range adapters are available as Pages and Items.
package pager
