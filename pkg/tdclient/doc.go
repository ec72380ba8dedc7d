// Package tdclient is the entry point for constructing a client that
// implements the tdapi.Client interface.
//
// It wires configuration, the XML transport and the authentication strategy
// on top of the interfaces and types defined in the tdapi package.
//
// Quick start
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
//
//	  // Log in with email and password. The returned client holds the
//	  // derived credential.
//	  cli, err := tdclient.NewWithPassword(ctx, "", "me@example.com", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  tasks, err := cli.Tasks().List(ctx, tdapi.NewParams().With("notcomp", "1"))
//	  if err != nil { log.Fatal(err) }
//	  _ = tasks
//
//	  // Persist session tokens between runs.
//	  cli, err = tdclient.New(ctx, &tdapi.Config{
//	    Email:    "me@example.com",
//	    Password: "secret",
//	    TokenCache: &tdapi.TokenCacheConfig{
//	      Type: tdapi.TokenCacheFile,
//	      Path: "/home/me/.tdo/tokens.yml",
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//	}
//
// An empty endpoint selects the public service endpoint.
//
// # Authentication
//
// New picks one strategy from the config (see tdapi.Config) and, unless
// SkipInitialAuth is set, runs the login protocol before returning. A
// Credential supplied in the config is trusted without a check. Close
// releases a NATS token cache connection opened for the client.
package tdclient
