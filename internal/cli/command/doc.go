// Package command defines the hostdeck-cli command tree.
//
// Every command runs against one Runtime built in the app's Before hook:
// configuration, the persisted session, the gateway, the session facade
// and the route guard. Commands bound to a protected route consult the
// guard in their own Before hook, so the action never runs when the
// session may not enter the route.
package command
