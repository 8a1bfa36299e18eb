// Package hellonear and its sub-packages implement the web frontend of the hellonear greeting contract on NEAR.
/*
hellonear provides one service, the greeter (package greeter), started with cmd/greeter/main.go.

Architecture

The greeter renders the page of the dApp on the server. A user signs in with the NEAR wallet, which authorises a
function-call key for the greeting contract; the key is kept in the session store (package lib/store) against the
browser session cookie. Signed in users see the name the contract holds for their account and can save a new one,
signed with their session key.

The state of each page (package greeter/view) follows the lifecycle of the original single page app: the name is read
once on mount, the form is disabled while a write is in flight, and a notification is shown for 11 seconds after a
successful write.

A contract layer (package lib/block) speaks the NEAR JSON-RPC API for the view and change calls of the contract. The
deployment environment (development, production, betanet...) selects the node, wallet and explorer urls.

Successful writes are published as name events to a message broker (package lib/msg) when one is configured, so other
services can follow the greetings of a network.

The service can be monitored via a Prometheus API by setting the flag "-m" at startup.
*/
package hellonear
