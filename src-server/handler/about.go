// This package holds the request flows shared by the CLI, the HTTP routes
// and the Discord bot, plus the Discord Interaction handlers.
//
// There should be 2 functions per Discord handler, one for adding the
// handler & information to send to Discord (public), and one for handling
// the interaction (private).
//
// Only return errors when it's the backend's fault, nil if user's fault.
package handler
