// Package sdk provides a Go client for the mapsearch listings API.
//
// The client speaks the HTTP transport and satisfies the same query
// contract the engine uses internally, so a map session can run against
// a remote backend:
//
//	client, _ := sdk.New(sdk.WithBaseURL("http://localhost:8080"))
//	clusters, count, _ := client.GetClusters(ctx, req)
package sdk
