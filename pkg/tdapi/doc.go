// Package tdapi provides types, interfaces, and helpers for working with the
// task and notebook web service.
//
// # Overview
//
// The tdapi package defines the decoded record type (Record), the interfaces
// for resource-oriented clients (TasksClient, FoldersClient, ...), the error
// taxonomy and the token cache backends. A concrete implementation of the
// clients is provided by the tdclient package, which wires configuration,
// transport and authentication. Most consumers import tdclient to construct a
// client and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
//	  "github.com/fivetwenty-io/tdapi-client/pkg/tdclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := tdclient.New(ctx, &tdapi.Config{
//	    Email:    "me@example.com",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  tasks, err := cli.Tasks().List(ctx, tdapi.NewParams().With("notcomp", "1"))
//	  if err != nil { log.Fatal(err) }
//	  for _, task := range tasks {
//	    log.Println(task.Title())
//	  }
//	}
//
// # Records
//
// Every element returned by the service is decoded into a Record. Known
// fields carry typed values: integers as int, flags as bool, durations as
// float64 and server dates as time.Time rebased to the local wall clock.
// Fields the client does not know are kept as raw strings. An element's own
// text is exposed as the "title" field.
//
// # Credentials
//
// Authenticated calls need a credential derived from the account password,
// the user ID and a short-lived session token. The client derives it on
// Authenticate; callers may also pass one explicitly per call with
// WithCredential. A TokenCache keeps the session token between runs so that
// only a cheap validation call is needed on start.
//
// # Errors
//
// Errors reported by the service are returned as *ServerError. A rejected
// login additionally matches ErrInvalidCredentials. Records the client cannot
// decode produce a *SchemaError. IsServerError, IsInvalidCredentials and
// IsSchemaError make it easy to branch on these cases.
package tdapi
