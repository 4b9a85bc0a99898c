// Package kwsearch embeds the kwsearch keyword search engine over a local
// SQLite user directory, without running the HTTP server.
//
//	client, _ := kwsearch.New(ctx, kwsearch.WithSQLite("users.db"), kwsearch.WithMaxItems(1000))
//	defer client.Close()
//
//	_, _ = client.Users().Insert(ctx, kwsearch.User{Username: "doejohn", Name: "John Doe"})
//	res, _ := client.Users().Search(ctx, kwsearch.SearchParams{
//	    Query:   "first_name:john,jane -username:admin",
//	    OrderBy: "created_at desc",
//	    PerPage: 20,
//	})
//	for _, e := range res.Errors {
//	    log.Println(e.Code, e.Message)
//	}
//
// Search problems such as a blank query or an out-of-range page are reported
// in SearchResult.Errors, not as Go errors. A Go error means the database
// failed.
package kwsearch
